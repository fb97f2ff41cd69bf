package handlers

import (
	"net/http"

	"github.com/productbazar/bazar/internal/httpserver/deps"
)

// ReloadLexicon nudges the scheduler to re-read the synonym lexicon now
// instead of waiting for the next tick.
func ReloadLexicon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.LexiconReloadTrigger == nil {
			writeData(w, map[string]string{"status": "no lexicon file configured"})
			return
		}
		select {
		case d.LexiconReloadTrigger <- struct{}{}:
			writeData(w, map[string]string{"status": "reload scheduled"})
		default:
			writeData(w, map[string]string{"status": "reload already pending"})
		}
	}
}
