package controllers

import (
	"net/http"

	"github.com/waitline/waitline/internal/auth"
	"github.com/waitline/waitline/internal/coordinator"
	"github.com/waitline/waitline/internal/estimate"
	"github.com/waitline/waitline/internal/notify"
	"github.com/waitline/waitline/internal/runtime"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes.
type ControllerRegistry struct {
	general  *GeneralController
	queue    *QueueController
	estimate *EstimateController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, svc *coordinator.Service, hub *notify.Hub, est *estimate.Estimator, authz auth.Authorizer) *ControllerRegistry {
	return &ControllerRegistry{
		general:  NewGeneralController(rt),
		queue:    NewQueueController(rt, svc, hub, authz),
		estimate: NewEstimateController(svc, est),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.queue.RegisterRoutes(mux)
	r.estimate.RegisterRoutes(mux)
}
