package handlers

import (
	"net/http"

	"github.com/productbazar/bazar/internal/apierr"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/mw"
	"github.com/productbazar/bazar/internal/logger"
)

type sessionBody struct {
	Token  string         `json:"token"`
	Viewer *domain.Viewer `json:"viewer"`
}

type sessionResponse struct {
	SessionID string         `json:"sessionId"`
	Viewer    *domain.Viewer `json:"viewer,omitempty"`
}

// AttachViewer binds an upstream-issued access token and its viewer to the
// session, so every later upstream call goes out authenticated.
func AttachViewer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())

		var body sessionBody
		if err := readJSON(r, &body); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if body.Token == "" || body.Viewer == nil || body.Viewer.ID == "" {
			writeError(w, d.Logger, apierr.New(apierr.KindBadRequest, "token and viewer are required"))
			return
		}

		s.Coordinator.Tokens().Set(body.Token)
		s.SetViewer(body.Viewer)
		d.Logger.Info("viewer attached",
			logger.String("session", s.ID),
			logger.String("user", body.Viewer.ID))

		writeData(w, sessionResponse{SessionID: s.ID, Viewer: body.Viewer})
	}
}

// DetachViewer clears the token, viewer and seen-recommendation set,
// returning the session to anonymous browsing without discarding its lists
// or threads. The next viewer on this browser starts with fresh
// recommendations.
func DetachViewer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())

		s.Coordinator.Tokens().Clear()
		s.SetViewer(nil)
		s.Seen.Clear()
		if d.Store != nil {
			// Best effort; the key carries its own TTL.
			if err := d.Store.ClearSeen(r.Context(), s.ID); err != nil {
				d.Logger.Warn("failed to clear seen set in redis",
					logger.String("session", s.ID),
					logger.Error(err))
			}
		}
		d.Logger.Info("viewer detached", logger.String("session", s.ID))

		writeData(w, sessionResponse{SessionID: s.ID})
	}
}

// SessionInfo reports the session id and viewer so a reloading page can
// resync without re-authenticating.
func SessionInfo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		writeData(w, sessionResponse{SessionID: s.ID, Viewer: s.Viewer()})
	}
}
