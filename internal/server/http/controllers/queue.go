package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/waitline/waitline/internal/accounts"
	"github.com/waitline/waitline/internal/auth"
	"github.com/waitline/waitline/internal/coordinator"
	"github.com/waitline/waitline/internal/notify"
	"github.com/waitline/waitline/internal/runtime"
)

// QueueController serves the queue mutation and observation endpoints.
//
// With an Authorizer configured every request needs a bearer token: customers
// may only act on their own account and the strike/complete endpoints need
// the owner or admin role. Without one the server runs open, acting as admin,
// which matches single-operator deployments behind a trusted network.
type QueueController struct {
	rt    *runtime.Runtime
	svc   *coordinator.Service
	hub   *notify.Hub
	authz auth.Authorizer
}

// NewQueueController creates a new queue controller.
func NewQueueController(rt *runtime.Runtime, svc *coordinator.Service, hub *notify.Hub, authz auth.Authorizer) *QueueController {
	return &QueueController{rt: rt, svc: svc, hub: hub, authz: authz}
}

// RegisterRoutes registers queue routes with the given mux.
func (c *QueueController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/queue/join", c.handleJoin)
	mux.HandleFunc("/v1/queue/leave", c.handleLeave)
	mux.HandleFunc("/v1/queue/state", c.handleState)
	mux.HandleFunc("/v1/queue/subscribe", c.handleSubscribe)
	mux.HandleFunc("/v1/queue/noshow", c.handleNoShow)
	mux.HandleFunc("/v1/queue/complete", c.handleComplete)
	mux.HandleFunc("/v1/queue/history", c.handleHistory)
	mux.HandleFunc("/v1/accounts/ensure", c.handleEnsureAccount)
	mux.HandleFunc("/v1/accounts/get", c.handleGetAccount)
}

// identity resolves the caller. Open mode (no authorizer) acts as admin.
func (c *QueueController) identity(r *http.Request) (auth.Identity, error) {
	if c.authz == nil {
		return auth.Identity{Role: accounts.RoleAdmin}, nil
	}
	return c.authz.Verify(r.Context(), auth.BearerToken(r))
}

// authorizeSelf lets customers act only on their own account.
func (c *QueueController) authorizeSelf(w http.ResponseWriter, r *http.Request, account string) bool {
	ident, err := c.identity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or missing token")
		return false
	}
	if ident.Role == accounts.RoleOwner || ident.Role == accounts.RoleAdmin {
		return true
	}
	if ident.Account != account {
		writeError(w, http.StatusForbidden, "token does not match account")
		return false
	}
	return true
}

func decodeQueueReq(w http.ResponseWriter, r *http.Request) (queueReq, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return queueReq{}, false
	}
	var req queueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return queueReq{}, false
	}
	return req, true
}

// handleJoin appends the account to the venue's queue and returns the
// resulting snapshot.
func (c *QueueController) handleJoin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQueueReq(w, r)
	if !ok {
		return
	}
	if !c.authorizeSelf(w, r, req.Account) {
		return
	}
	snap, err := c.svc.Join(r.Context(), req.Venue, req.Account)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, snap)
}

// handleLeave removes the account from the venue's queue.
func (c *QueueController) handleLeave(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQueueReq(w, r)
	if !ok {
		return
	}
	if !c.authorizeSelf(w, r, req.Account) {
		return
	}
	snap, err := c.svc.Leave(r.Context(), req.Venue, req.Account)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, snap)
}

// handleState returns the venue's current ordered queue.
func (c *QueueController) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := c.svc.GetState(r.Context(), r.URL.Query().Get("venue"))
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, snap)
}

// handleSubscribe streams the venue's snapshots over SSE. The current state
// is sent first so late subscribers start from a full picture.
func (c *QueueController) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	venue := r.URL.Query().Get("venue")
	snap, err := c.svc.GetState(r.Context(), venue)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sink := sseSink{w: w, r: r}
	sub := c.hub.Subscribe(venue, sink)
	defer sub.Close()
	if err := sink.Send(snap); err != nil {
		return
	}
	<-r.Context().Done()
}

// handleNoShow records a reliability strike. Owner or admin only.
func (c *QueueController) handleNoShow(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQueueReq(w, r)
	if !ok {
		return
	}
	ident, err := c.identity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	res, err := c.svc.MarkNoShow(r.Context(), ident.Role, req.Venue, req.Account)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, res)
}

// handleComplete finishes a service and credits loyalty. Owner or admin only.
func (c *QueueController) handleComplete(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQueueReq(w, r)
	if !ok {
		return
	}
	ident, err := c.identity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	res, err := c.svc.CompleteService(r.Context(), ident.Role, req.Venue, req.Account)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, res)
}

// handleHistory returns the venue's most recent journal events.
func (c *QueueController) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := c.svc.History(r.Context(), q.Get("venue"), parseLimit(q.Get("limit")))
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, map[string]any{"events": events})
}

// handleEnsureAccount creates an account record if absent. Elevated roles
// need an owner or admin caller.
func (c *QueueController) handleEnsureAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req ensureAccountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != "" && req.Role != accounts.RoleCustomer {
		ident, err := c.identity(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		if ident.Role != accounts.RoleOwner && ident.Role != accounts.RoleAdmin {
			writeError(w, http.StatusForbidden, "role elevation requires owner or admin")
			return
		}
	}
	rec, err := c.rt.Accounts().Ensure(r.Context(), req.Account, req.Role, req.DisplayName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, toAccountResp(rec))
}

// handleGetAccount returns one account record.
func (c *QueueController) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if !c.authorizeSelf(w, r, account) {
		return
	}
	rec, err := c.rt.Accounts().Get(r.Context(), account)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown account")
			return
		}
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, toAccountResp(rec))
}

func toAccountResp(rec accounts.Record) accountResp {
	return accountResp{
		Account:     rec.ID,
		DisplayName: rec.DisplayName,
		Role:        rec.Role,
		NoShows:     rec.NoShows,
		Banned:      rec.Banned,
		Loyalty:     rec.Loyalty,
	}
}
