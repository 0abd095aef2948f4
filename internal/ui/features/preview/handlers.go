// Package preview serves the per-session index preview routes of the
// dashboard API. Every browser session owns one preview session in the
// registry; the events route streams its state to the page as datastar
// signal patches.
package preview

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/indexlens/indexlens/internal/preview"
	"github.com/indexlens/indexlens/internal/ui/features/common"
	"github.com/indexlens/indexlens/internal/ui/registry"
)

// Handlers provides HTTP handlers for the preview feature.
type Handlers struct {
	registry     *registry.Registry
	sessionStore sessions.Store
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(reg *registry.Registry, sessionStore sessions.Store, logger *slog.Logger) *Handlers {
	return &Handlers{
		registry:     reg,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

// session resolves the cookie-backed browser session to its preview
// session, creating both on first contact.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*preview.Session, error) {
	id, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		return nil, err
	}
	sess, _ := h.registry.Acquire(id)
	return sess, nil
}

// State answers the current preview state snapshot.
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		common.RespondErr(w, err)
		return
	}
	common.RespondOK(w, sess.Snapshot())
}

// SelectIndex switches the session's preview to the requested index and
// answers the state after columns and rows have loaded.
func (h *Handlers) SelectIndex(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.Index == "" {
		common.RespondError(w, http.StatusBadRequest, errors.New("index is required"))
		return
	}

	sess, err := h.session(w, r)
	if err != nil {
		common.RespondErr(w, err)
		return
	}
	if err := sess.SelectIndex(r.Context(), req.Index); err != nil {
		h.logger.Error("index selection failed", "index", req.Index, "error", err)
		common.RespondErr(w, err)
		return
	}
	common.RespondOK(w, sess.Snapshot())
}

// ApplyFilter parses the query text against the selected index and
// re-fetches rows. A malformed query is the caller's input, not a
// session failure, so it answers 400 while the session keeps its rows.
func (h *Handlers) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	sess, err := h.session(w, r)
	if err != nil {
		common.RespondErr(w, err)
		return
	}
	if sess.Snapshot().SelectedIndex == "" {
		common.RespondError(w, http.StatusBadRequest, errors.New("no index selected"))
		return
	}
	if err := sess.ApplyFilter(r.Context(), req.Query); err != nil {
		common.RespondErr(w, err)
		return
	}
	common.RespondOK(w, sess.Snapshot())
}

// Refresh schedules a debounced reload of the index options. The reload
// lands after the debounce window; the events stream carries the
// result, so the snapshot answered here still shows the old options.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		common.RespondErr(w, err)
		return
	}
	sess.RefreshIndices(r.Context())
	common.RespondOK(w, sess.Snapshot())
}

// Drop discards the browser session's preview state. The next preview
// request starts a fresh session.
func (h *Handlers) Drop(w http.ResponseWriter, r *http.Request) {
	id, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.RespondErr(w, err)
		return
	}
	h.registry.Drop(id)
	common.RespondOK(w, nil)
}

// Events is the long-lived SSE endpoint for the preview page. It pushes
// the full state snapshot as a signal patch on connect and again after
// every state commit.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	// The session cookie must be settled before the SSE handshake
	// writes the response header.
	id, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.RespondErr(w, err)
		return
	}
	sess, n := h.registry.Acquire(id)

	sse := datastar.NewSSE(w, r)

	updates := n.Subscribe()
	defer n.Unsubscribe(updates)

	// The page carries no initial state of its own; the stream opens
	// with the current snapshot, then follows commits.
	if err := h.patchState(sse, sess); err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := h.patchState(sse, sess); err != nil {
				_ = sse.ConsoleError(err)
				// Don't return - keep trying on next update
			}
		}
	}
}

func (h *Handlers) patchState(sse *datastar.ServerSentEventGenerator, sess *preview.Session) error {
	return sse.MarshalAndPatchSignals(StateSignals{Preview: sess.Snapshot()})
}
