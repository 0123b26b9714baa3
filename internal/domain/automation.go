package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
)

// TriggerKind discriminates the variant held by a Trigger.
type TriggerKind string

const (
	// TriggerStateChanged fires when a specific entity changes state.
	TriggerStateChanged TriggerKind = "state_changed"
	// TriggerTimePattern fires on a cron-like time pattern (never matches
	// broadcast events inside the core; see Trigger.Matches).
	TriggerTimePattern TriggerKind = "time_pattern"
	// TriggerManual fires only through an explicit manual invocation.
	TriggerManual TriggerKind = "manual"
)

// Trigger describes the event pattern that activates an Automation. It
// is an externally tagged sum type: on the wire it serializes as
// {"type": "<variant>", ...fields}.
type Trigger struct {
	Kind     TriggerKind
	EntityID ids.EntityID // StateChanged
	From     *EntityState // StateChanged, optional
	To       *EntityState // StateChanged, optional
	Cron     string       // TimePattern
}

// NewStateChangedTrigger builds a Trigger that fires when entityID
// transitions, optionally constrained by from/to state.
func NewStateChangedTrigger(entityID ids.EntityID, from, to *EntityState) Trigger {
	return Trigger{Kind: TriggerStateChanged, EntityID: entityID, From: from, To: to}
}

// NewTimePatternTrigger builds a Trigger carrying a cron expression.
func NewTimePatternTrigger(cron string) Trigger {
	return Trigger{Kind: TriggerTimePattern, Cron: cron}
}

// NewManualTrigger builds the Manual trigger variant.
func NewManualTrigger() Trigger { return Trigger{Kind: TriggerManual} }

// Matches reports whether this trigger fires for the given event. Manual
// and TimePattern triggers never match a broadcast event — they are
// activated through other channels outside the core.
func (t Trigger) Matches(event Event) bool {
	if t.Kind != TriggerStateChanged {
		return false
	}
	if event.Type != EventStateChanged {
		return false
	}
	if event.EntityID == nil || event.EntityID.UUID != t.EntityID.UUID {
		return false
	}
	if t.From != nil {
		actual, ok := event.DataString("from")
		if !ok || actual != t.From.String() {
			return false
		}
	}
	if t.To != nil {
		actual, ok := event.DataString("to")
		if !ok || actual != t.To.String() {
			return false
		}
	}
	return true
}

func (t Trigger) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TriggerStateChanged:
		m := map[string]any{"type": string(t.Kind), "entity_id": t.EntityID}
		if t.From != nil {
			m["from"] = *t.From
		}
		if t.To != nil {
			m["to"] = *t.To
		}
		return json.Marshal(m)
	case TriggerTimePattern:
		return json.Marshal(map[string]any{"type": string(t.Kind), "cron": t.Cron})
	case TriggerManual:
		return json.Marshal(map[string]any{"type": string(t.Kind)})
	default:
		return nil, fmt.Errorf("unknown trigger kind %q", t.Kind)
	}
}

func (t *Trigger) UnmarshalJSON(b []byte) error {
	var env struct {
		Type     string       `json:"type"`
		EntityID ids.EntityID `json:"entity_id"`
		From     *EntityState `json:"from"`
		To       *EntityState `json:"to"`
		Cron     string       `json:"cron"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("unmarshal trigger: %w", err)
	}
	switch TriggerKind(env.Type) {
	case TriggerStateChanged:
		*t = Trigger{Kind: TriggerStateChanged, EntityID: env.EntityID, From: env.From, To: env.To}
	case TriggerTimePattern:
		*t = Trigger{Kind: TriggerTimePattern, Cron: env.Cron}
	case TriggerManual:
		*t = Trigger{Kind: TriggerManual}
	default:
		return fmt.Errorf("unknown trigger type %q", env.Type)
	}
	return nil
}

// ConditionKind discriminates the variant held by a Condition.
type ConditionKind string

const (
	// ConditionStateIs requires a specific entity to be in a given state.
	ConditionStateIs ConditionKind = "state_is"
	// ConditionTimeRange requires the current wall-clock time be within a window.
	ConditionTimeRange ConditionKind = "time_range"
)

// Condition is a predicate that must hold for an Automation's actions to
// run. All conditions in an Automation are ANDed together.
type Condition struct {
	Kind     ConditionKind
	EntityID ids.EntityID // StateIs
	State    string       // StateIs
	After    string       // TimeRange, "HH:MM"
	Before   string       // TimeRange, "HH:MM"
}

// NewStateIsCondition builds a Condition requiring entityID to be in state.
func NewStateIsCondition(entityID ids.EntityID, state string) Condition {
	return Condition{Kind: ConditionStateIs, EntityID: entityID, State: state}
}

// NewTimeRangeCondition builds a Condition requiring the current time to
// be within [after, before] (24h "HH:MM"); an overnight window is
// expressed by after > before.
func NewTimeRangeCondition(after, before string) Condition {
	return Condition{Kind: ConditionTimeRange, After: after, Before: before}
}

func (c Condition) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ConditionStateIs:
		return json.Marshal(map[string]any{"type": string(c.Kind), "entity_id": c.EntityID, "state": c.State})
	case ConditionTimeRange:
		return json.Marshal(map[string]any{"type": string(c.Kind), "after": c.After, "before": c.Before})
	default:
		return nil, fmt.Errorf("unknown condition kind %q", c.Kind)
	}
}

func (c *Condition) UnmarshalJSON(b []byte) error {
	var env struct {
		Type     string       `json:"type"`
		EntityID ids.EntityID `json:"entity_id"`
		State    string       `json:"state"`
		After    string       `json:"after"`
		Before   string       `json:"before"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("unmarshal condition: %w", err)
	}
	switch ConditionKind(env.Type) {
	case ConditionStateIs:
		*c = Condition{Kind: ConditionStateIs, EntityID: env.EntityID, State: env.State}
	case ConditionTimeRange:
		*c = Condition{Kind: ConditionTimeRange, After: env.After, Before: env.Before}
	default:
		return fmt.Errorf("unknown condition type %q", env.Type)
	}
	return nil
}

// ActionKind discriminates the variant held by an Action.
type ActionKind string

const (
	// ActionCallService invokes a service on a target entity.
	ActionCallService ActionKind = "call_service"
	// ActionDelay suspends execution for a duration before the next action.
	ActionDelay ActionKind = "delay"
)

// Action is an effect performed when an Automation's trigger fires and
// all conditions hold. Actions execute sequentially.
type Action struct {
	Kind     ActionKind
	EntityID ids.EntityID    // CallService
	Service  string          // CallService
	Data     json.RawMessage // CallService, optional
	Seconds  uint64          // Delay
}

// NewCallServiceAction builds an Action invoking service on entityID.
func NewCallServiceAction(entityID ids.EntityID, service string, data json.RawMessage) Action {
	return Action{Kind: ActionCallService, EntityID: entityID, Service: service, Data: data}
}

// NewDelayAction builds an Action that sleeps for the given duration.
func NewDelayAction(seconds uint64) Action { return Action{Kind: ActionDelay, Seconds: seconds} }

// Duration returns the Delay action's wait as a time.Duration.
func (a Action) Duration() time.Duration { return time.Duration(a.Seconds) * time.Second }

func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ActionCallService:
		data := a.Data
		if data == nil {
			data = json.RawMessage("null")
		}
		return json.Marshal(map[string]any{
			"type": string(a.Kind), "entity_id": a.EntityID, "service": a.Service, "data": data,
		})
	case ActionDelay:
		return json.Marshal(map[string]any{"type": string(a.Kind), "seconds": a.Seconds})
	default:
		return nil, fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

func (a *Action) UnmarshalJSON(b []byte) error {
	var env struct {
		Type     string          `json:"type"`
		EntityID ids.EntityID    `json:"entity_id"`
		Service  string          `json:"service"`
		Data     json.RawMessage `json:"data"`
		Seconds  uint64          `json:"seconds"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("unmarshal action: %w", err)
	}
	switch ActionKind(env.Type) {
	case ActionCallService:
		*a = Action{Kind: ActionCallService, EntityID: env.EntityID, Service: env.Service, Data: env.Data}
	case ActionDelay:
		*a = Action{Kind: ActionDelay, Seconds: env.Seconds}
	default:
		return fmt.Errorf("unknown action type %q", env.Type)
	}
	return nil
}

// Automation is a declarative rule: when Trigger matches an event and
// all Conditions hold, Actions execute in order.
type Automation struct {
	ID            ids.AutomationID `json:"id"`
	Name          string           `json:"name"`
	Enabled       bool             `json:"enabled"`
	Trigger       Trigger          `json:"trigger"`
	Conditions    []Condition      `json:"conditions"`
	Actions       []Action         `json:"actions"`
	LastTriggered *time.Time       `json:"last_triggered,omitempty"`
}

// Validate checks domain invariants: name non-empty, actions non-empty,
// and any TimePattern trigger's cron expression must parse (the core
// rejects malformed cron patterns up front even though it never
// schedules them).
func (a Automation) Validate() error {
	if a.Name == "" {
		return huberr.Validation("automation", "name must not be empty")
	}
	if len(a.Actions) == 0 {
		return huberr.Validation("automation", "actions must not be empty")
	}
	if a.Trigger.Kind == TriggerTimePattern {
		if _, err := ParseCron(a.Trigger.Cron); err != nil {
			return huberr.Validationf("automation", "invalid cron expression %q: %v", a.Trigger.Cron, err)
		}
	}
	return nil
}

// AutomationBuilder builds an Automation step by step, validating on Build.
type AutomationBuilder struct {
	a Automation
}

// NewAutomationBuilder starts a builder with a fresh ID and Enabled=true.
func NewAutomationBuilder() *AutomationBuilder {
	return &AutomationBuilder{a: Automation{ID: ids.NewAutomationID(), Enabled: true}}
}

// WithID overrides the generated ID.
func (b *AutomationBuilder) WithID(id ids.AutomationID) *AutomationBuilder {
	b.a.ID = id
	return b
}

// WithName sets the automation's name.
func (b *AutomationBuilder) WithName(name string) *AutomationBuilder {
	b.a.Name = name
	return b
}

// WithEnabled overrides the enabled flag.
func (b *AutomationBuilder) WithEnabled(enabled bool) *AutomationBuilder {
	b.a.Enabled = enabled
	return b
}

// WithTrigger sets the trigger.
func (b *AutomationBuilder) WithTrigger(t Trigger) *AutomationBuilder {
	b.a.Trigger = t
	return b
}

// WithConditions sets the ordered condition list.
func (b *AutomationBuilder) WithConditions(conds ...Condition) *AutomationBuilder {
	b.a.Conditions = conds
	return b
}

// WithActions sets the ordered, non-empty action list.
func (b *AutomationBuilder) WithActions(actions ...Action) *AutomationBuilder {
	b.a.Actions = actions
	return b
}

// Build validates and returns the constructed Automation.
func (b *AutomationBuilder) Build() (Automation, error) {
	if err := b.a.Validate(); err != nil {
		return Automation{}, err
	}
	return b.a, nil
}
