package http

import (
	"net/http"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
)

// healthHandler reports the service version and how many dictionaries are
// loaded. spellUC may be nil when only the webhook endpoint is served.
func healthHandler(spellUC interfaces.SpellUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: "quill",
			Version: types.Version,
		}
		if spellUC != nil {
			status.Dictionaries = len(spellUC.ListDictionaries(r.Context()))
		}
		writeJSON(r.Context(), w, status)
	}
}
