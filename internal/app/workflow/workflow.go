package workflow

import (
	"fmt"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
)

// Status is a lifecycle state of an approval record
type Status string

// Action is a named transition request against a record
type Action string

// Edge describes the single legal source and target status of an action
type Edge struct {
	From Status
	To   Status
}

// Graph is the allowed-transition table for one workflow. Each action maps to
// exactly one edge plus the set of roles allowed to take it. Ownership
// constraints (an instructor may only decide enrollments for courses they own)
// are relationship checks against the store and live in the services, not here.
type Graph struct {
	name  string
	edges map[Action]Edge
	roles map[Action][]models.Role
}

// NewGraph creates an empty transition graph
func NewGraph(name string) *Graph {
	return &Graph{
		name:  name,
		edges: make(map[Action]Edge),
		roles: make(map[Action][]models.Role),
	}
}

// Name returns the workflow name
func (g *Graph) Name() string {
	return g.name
}

// Allow registers an action with its edge and the roles that may take it
func (g *Graph) Allow(action Action, from, to Status, roles ...models.Role) *Graph {
	g.edges[action] = Edge{From: from, To: to}
	g.roles[action] = roles
	return g
}

// Result is the outcome of applying an action
type Result struct {
	Status Status
	// Changed is false when the record was already in the action's target
	// status. Racing approvers make this the common case, so it is reported
	// as a no-op success rather than a conflict.
	Changed bool
}

// Terminal reports whether a status has no outgoing edges in this graph
func (g *Graph) Terminal(status Status) bool {
	for _, edge := range g.edges {
		if edge.From == status {
			return false
		}
	}
	return true
}

// Apply evaluates an action against the current status for an actor role.
// It returns the resulting status, or an error that leaves the record
// untouched: apperrors.ErrPermissionDenied when the role may not take the
// action, apperrors.ErrTerminalStatus when the record can never move again,
// and apperrors.ErrIllegalTransition for any other edge mismatch.
func (g *Graph) Apply(current Status, action Action, actor models.Role) (Result, error) {
	edge, ok := g.edges[action]
	if !ok {
		return Result{Status: current}, fmt.Errorf("%w: unknown action %q in workflow %s",
			apperrors.ErrIllegalTransition, action, g.name)
	}

	allowed := false
	for _, role := range g.roles[action] {
		if role == actor {
			allowed = true
			break
		}
	}
	if !allowed {
		return Result{Status: current}, fmt.Errorf("%w: role %q may not %s a %s record",
			apperrors.ErrPermissionDenied, actor, action, g.name)
	}

	// Idempotent no-op: the record is already where this action would put it
	if current == edge.To {
		return Result{Status: current, Changed: false}, nil
	}

	if current != edge.From {
		if g.Terminal(current) {
			return Result{Status: current}, fmt.Errorf("%w: %s record is %q",
				apperrors.ErrTerminalStatus, g.name, current)
		}
		return Result{Status: current}, fmt.Errorf("%w: cannot %s a %s record in status %q",
			apperrors.ErrIllegalTransition, action, g.name, current)
	}

	return Result{Status: edge.To, Changed: true}, nil
}
