package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/waitline/waitline/internal/coordinator"
	"github.com/waitline/waitline/internal/estimate"
)

// defaultAvgServiceMinutes is assumed when the caller does not supply the
// venue's average service time.
const defaultAvgServiceMinutes = 15

// EstimateController serves wait-time predictions for a venue's queue.
type EstimateController struct {
	svc *coordinator.Service
	est *estimate.Estimator
}

// NewEstimateController creates a new estimate controller.
func NewEstimateController(svc *coordinator.Service, est *estimate.Estimator) *EstimateController {
	return &EstimateController{svc: svc, est: est}
}

// RegisterRoutes registers estimate routes with the given mux.
func (c *EstimateController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/waittime", c.handleWaitTime)
	mux.HandleFunc("/v1/estimate/waittime", c.handlePredict)
}

// handleWaitTime predicts the wait in minutes for joining the venue's queue
// now. avg_service_time overrides the default per-customer minutes.
func (c *EstimateController) handleWaitTime(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	venue := q.Get("venue")
	snap, err := c.svc.GetState(r.Context(), venue)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	now := time.Now()
	f := estimate.Features{
		QueueLength:       len(snap.Queue),
		AvgServiceMinutes: parseFloat(q.Get("avg_service_time"), defaultAvgServiceMinutes),
		HourOfDay:         now.Hour(),
		DayOfWeek:         int(now.Weekday()),
	}
	writeJSON(w, waitTimeResp{
		Venue:       venue,
		QueueLength: len(snap.Queue),
		WaitMinutes: c.est.Predict(r.Context(), f),
	})
}

// handlePredict estimates from caller-supplied features, for clients that
// track their own queue metrics.
func (c *EstimateController) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var f estimate.Features
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if f.AvgServiceMinutes == 0 {
		f.AvgServiceMinutes = defaultAvgServiceMinutes
	}
	writeJSON(w, map[string]float64{"predicted_minutes": c.est.Predict(r.Context(), f)})
}
