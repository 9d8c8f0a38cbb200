// Package genagents is the resilient call layer between a generative-agents
// simulation and an unreliable text-generation service.
//
// A single best-effort completion is turned into a validated, typed value
// through four steps:
//
//  1. A named prompt template is resolved with positional inputs
//     (see package template).
//  2. The prompt is wrapped in a JSON output contract and sent through the
//     completion gateway, which picks the active model for a [Role]
//     (see packages provider, models and gateway).
//  3. The response is parsed, validated and cleaned up, retrying a bounded
//     number of times and degrading to a task-declared fallback value
//     (see package safe).
//  4. Each concrete task (wake-up hour, daily plan, ...) is described by a
//     task.Task record that supplies inputs, validation, clean-up and
//     fallback (see packages task and tasks).
//
// This package holds the types shared by all of them: roles, the [Model]
// and [Completer] interfaces, hook events, the audit [RunRecord], and the
// sentinel errors.
package genagents

// Role is the functional category of a model configuration.
type Role string

const (
	// RoleGeneral is the general-purpose chat model used by most tasks.
	RoleGeneral Role = "general"

	// RoleReasoning is the extended-reasoning model.
	RoleReasoning Role = "reasoning"

	// RoleEmbedding is the embedding model.
	RoleEmbedding Role = "embedding"
)

// Roles lists every known role in display order.
func Roles() []Role {
	return []Role{RoleGeneral, RoleReasoning, RoleEmbedding}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGeneral, RoleReasoning, RoleEmbedding:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
