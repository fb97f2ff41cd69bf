package handlers

import (
	"net/http"

	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/mw"
	"github.com/productbazar/bazar/internal/mutate"
)

type eventsResponse struct {
	Events []mutate.Event `json:"events"`
}

// DrainEvents hands the client the UI events queued since its last poll,
// toasts from failed optimistic writes included, and empties the buffer.
func DrainEvents(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		evs := s.DrainEvents()
		if evs == nil {
			evs = []mutate.Event{}
		}
		writeData(w, eventsResponse{Events: evs})
	}
}
