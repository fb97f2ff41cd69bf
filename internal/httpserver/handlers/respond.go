package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/productbazar/bazar/internal/apierr"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/logger"
)

// dataEnvelope is the success shape every endpoint answers with.
type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// errorEnvelope mirrors the upstream error contract so the browser consumes
// one shape end to end.
type errorEnvelope struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, dataEnvelope{Success: true, Data: data})
}

// writeError maps domain and upstream errors to a gateway response.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrCommentNotFound):
		writeJSON(w, http.StatusNotFound, errorEnvelope{Message: "comment not found"})
		return
	case errors.Is(err, domain.ErrReplyTooDeep):
		writeJSON(w, http.StatusUnprocessableEntity, errorEnvelope{Message: "replies cannot nest deeper"})
		return
	case errors.Is(err, domain.ErrSelfReply):
		writeJSON(w, http.StatusUnprocessableEntity, errorEnvelope{Message: "cannot reply to your own comment"})
		return
	case errors.Is(err, domain.ErrProductNotKnown):
		writeJSON(w, http.StatusConflict, errorEnvelope{Message: "product state unknown, resend with a snapshot"})
		return
	}

	status := apierr.HTTPStatus(err)
	env := errorEnvelope{Message: "request failed"}

	var ae *apierr.Error
	if errors.As(err, &ae) {
		if ae.Message != "" {
			env.Message = ae.Message
		}
		env.FieldErrors = ae.FieldErrors
		if ae.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(ae.RetryAfter.Seconds())))
		}
	}

	if status >= 500 {
		log.Error("request failed", logger.Error(err))
	}
	writeJSON(w, status, env)
}

// readJSON decodes the request body into out, bounded at 1 MiB.
func readJSON(r *http.Request, out any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(out); err != nil {
		return apierr.Wrap(apierr.KindBadRequest, "invalid json body", err)
	}
	return nil
}
