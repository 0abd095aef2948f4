package common

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// SessionCookie names the cookie carrying the dashboard session.
const SessionCookie = "indexlens_session"

// SessionID returns the browser session's id, minting and saving a new
// one on first contact. The id keys the preview session registry; it
// carries no identity beyond that.
func SessionID(store sessions.Store, w http.ResponseWriter, r *http.Request) (string, error) {
	// A stale or tampered cookie decodes into a fresh session; the Get
	// error only reports that.
	sess, _ := store.Get(r, SessionCookie)

	if id, ok := sess.Values["id"].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	sess.Values["id"] = id
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}
