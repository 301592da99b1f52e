package routing

import (
	"go.uber.org/zap"

	"taskrouter/internal/models"
)

// Thresholds are the addressee-count cutoffs below which scheduling and
// outreach requests stay in the sender's personal queue. They are policy
// configuration, not tuned constants; see config.Routing.
type Thresholds struct {
	SchedulingFanoutLimit int
	OutreachFanoutLimit   int
}

// Router assigns a destination queue to a work request at creation time.
// The decision is made exactly once; route_to is immutable after insert.
type Router struct {
	thresholds Thresholds
	logger     *zap.Logger
}

func NewRouter(thresholds Thresholds, logger *zap.Logger) *Router {
	return &Router{thresholds: thresholds, logger: logger}
}

// Route applies the decision table: small-fanout scheduling and outreach
// requests surface in the personal planning view, everything else lands in
// the sender's team backlog.
func (r *Router) Route(category models.Category, addresseeCount int, senderRole models.Role) models.Route {
	switch {
	case category == models.CategoryScheduling && addresseeCount < r.thresholds.SchedulingFanoutLimit:
		return models.RoutePersonalQueue
	case category == models.CategoryOutreach && addresseeCount < r.thresholds.OutreachFanoutLimit:
		return models.RoutePersonalQueue
	}

	route := models.RouteTeamQueueA
	if senderRole == models.RoleSpecialist {
		route = models.RouteTeamQueueB
	}

	r.logger.Debug("routed to team queue",
		zap.String("category", string(category)),
		zap.Int("addressee_count", addresseeCount),
		zap.String("sender_role", string(senderRole)),
		zap.String("route", string(route)))

	return route
}
