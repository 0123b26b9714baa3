// Package automation implements the reactive rule engine: trigger
// matching lives on the domain type itself (domain.Trigger.Matches),
// while this package supplies condition evaluation (conditions.go),
// the service-call state mapping, and the engine loop that drives them
// against the event bus and repositories.
package automation

import "github.com/hearthhub/hub/internal/domain"

// ServiceToState maps a CallService action's service name to the
// target EntityState it requests, given the entity's current state.
// The second return value reports whether service named a recognized
// mapping at all; an unrecognized service name is a no-op action, not
// an error.
func ServiceToState(service string, current domain.EntityState) (domain.EntityState, bool) {
	switch service {
	case "turn_on":
		return domain.StateOn, true
	case "turn_off":
		return domain.StateOff, true
	case "toggle":
		if current == domain.StateOn {
			return domain.StateOff, true
		}
		return domain.StateOn, true
	default:
		return "", false
	}
}
