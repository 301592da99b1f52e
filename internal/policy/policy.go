package policy

import (
	"go.uber.org/zap"

	"taskrouter/internal/config"
	"taskrouter/internal/models"
)

// Policy is a pluggable access-control strategy deciding which tasks a
// caller may see. Every policy other than Admin returns a strict subset of
// what Admin would return for the same filters.
type Policy interface {
	Name() string
	Permits(task models.Task, callerID string) bool
}

// GeneralistPolicy sees chat-sourced tasks plus manual tasks the caller
// created themselves.
type GeneralistPolicy struct{}

func (GeneralistPolicy) Name() string { return "generalist" }

func (GeneralistPolicy) Permits(task models.Task, callerID string) bool {
	switch task.Source {
	case models.SourceChat:
		return true
	case models.SourceManual:
		return task.AssignorID == callerID
	default:
		return false
	}
}

// SpecialistPolicy sees issue-tracker-sourced tasks plus manual tasks the
// caller created themselves.
type SpecialistPolicy struct{}

func (SpecialistPolicy) Name() string { return "specialist" }

func (SpecialistPolicy) Permits(task models.Task, callerID string) bool {
	switch task.Source {
	case models.SourceIssueTracker:
		return true
	case models.SourceManual:
		return task.AssignorID == callerID
	default:
		return false
	}
}

// AdminPolicy applies no filtering.
type AdminPolicy struct{}

func (AdminPolicy) Name() string { return "admin" }

func (AdminPolicy) Permits(models.Task, string) bool { return true }

// DevelopmentBypassPolicy disables the isolation guarantee. It is only
// reachable through explicit configuration and logs on every single use so
// an accidentally deployed bypass cannot stay quiet.
type DevelopmentBypassPolicy struct {
	logger *zap.Logger
}

func (DevelopmentBypassPolicy) Name() string { return "development-bypass" }

func (p DevelopmentBypassPolicy) Permits(task models.Task, callerID string) bool {
	p.logger.Warn("DEVELOPMENT BYPASS POLICY ACTIVE: access isolation disabled",
		zap.String("task_id", task.ID),
		zap.String("caller_id", callerID))
	return true
}

// denyAllPolicy is the fail-closed default for roles the caller cannot
// prove: empty result set, never partial data.
type denyAllPolicy struct{}

func (denyAllPolicy) Name() string { return "deny-all" }

func (denyAllPolicy) Permits(models.Task, string) bool { return false }

// Selector resolves the policy for a caller role. The mode is injected at
// startup from configuration; there is no ambient or env-driven switching.
type Selector struct {
	bypass bool
	logger *zap.Logger
}

// NewSelector builds the policy selector. When the configured mode is
// development-bypass it announces the fact loudly at startup.
func NewSelector(mode string, logger *zap.Logger) *Selector {
	bypass := mode == config.PolicyModeDevelopmentBypass
	if bypass {
		logger.Warn("DEVELOPMENT BYPASS POLICY SELECTED: all task queries will ignore role isolation; never run this mode in production")
	}
	return &Selector{bypass: bypass, logger: logger}
}

// ForRole returns the policy scoping queries for the given role. Unknown
// roles fail closed.
func (s *Selector) ForRole(role models.Role) Policy {
	if s.bypass {
		return DevelopmentBypassPolicy{logger: s.logger}
	}
	switch role {
	case models.RoleGeneralist:
		return GeneralistPolicy{}
	case models.RoleSpecialist:
		return SpecialistPolicy{}
	case models.RoleAdmin:
		return AdminPolicy{}
	default:
		return denyAllPolicy{}
	}
}
