package domain

import (
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
)

// Area is a logical grouping such as a room, floor, or zone. ParentID is
// a weak reference: it is looked up by callers but deleting the parent
// never cascades into child areas.
type Area struct {
	ID       ids.AreaID  `json:"id"`
	Name     string      `json:"name"`
	ParentID *ids.AreaID `json:"parent_id,omitempty"`
}

// Validate checks domain invariants: name must be non-empty.
func (a Area) Validate() error {
	if a.Name == "" {
		return huberr.Validation("area", "name must not be empty")
	}
	return nil
}

// AreaBuilder builds an Area step by step, validating on Build.
type AreaBuilder struct {
	id       ids.AreaID
	name     string
	parentID *ids.AreaID
}

// NewAreaBuilder starts a builder with a fresh ID.
func NewAreaBuilder() *AreaBuilder {
	return &AreaBuilder{id: ids.NewAreaID()}
}

// WithID overrides the generated ID (e.g. when rehydrating from storage).
func (b *AreaBuilder) WithID(id ids.AreaID) *AreaBuilder {
	b.id = id
	return b
}

// WithName sets the area's display name.
func (b *AreaBuilder) WithName(name string) *AreaBuilder {
	b.name = name
	return b
}

// WithParent sets the weak parent-area reference.
func (b *AreaBuilder) WithParent(parent ids.AreaID) *AreaBuilder {
	b.parentID = &parent
	return b
}

// Build validates and returns the constructed Area.
func (b *AreaBuilder) Build() (Area, error) {
	area := Area{ID: b.id, Name: b.name, ParentID: b.parentID}
	if err := area.Validate(); err != nil {
		return Area{}, err
	}
	return area, nil
}
