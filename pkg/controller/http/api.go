package http

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
)

const maxCheckBody = 2 << 20

type apiHandler struct {
	spellUC interfaces.SpellUseCase
}

func (h *apiHandler) routes(r chi.Router) {
	r.Get("/dictionaries", h.listDictionaries)
	r.Route("/dictionaries/{name}", func(r chi.Router) {
		r.Post("/check", h.checkText)
		r.Get("/words/{word}", h.lookupWord)
		r.Get("/user-words", h.listUserWords)
		r.Put("/user-words/{word}", h.addUserWord)
		r.Delete("/user-words/{word}", h.deleteUserWord)
	})
}

func (h *apiHandler) listDictionaries(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, map[string]any{
		"dictionaries": h.spellUC.ListDictionaries(r.Context()),
	})
}

func (h *apiHandler) checkText(w http.ResponseWriter, r *http.Request) {
	var req model.CheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCheckBody)).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagInvalidInput)))
		return
	}

	result, err := h.spellUC.CheckText(r.Context(), chi.URLParam(r, "name"), userFromContext(r.Context()), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, result)
}

func (h *apiHandler) lookupWord(w http.ResponseWriter, r *http.Request) {
	report, err := h.spellUC.LookupWord(r.Context(), chi.URLParam(r, "name"), userFromContext(r.Context()), wordParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, report)
}

func (h *apiHandler) listUserWords(w http.ResponseWriter, r *http.Request) {
	words, err := h.spellUC.ListUserWords(r.Context(), chi.URLParam(r, "name"), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, words)
}

func (h *apiHandler) addUserWord(w http.ResponseWriter, r *http.Request) {
	if err := h.spellUC.AddUserWord(r.Context(), chi.URLParam(r, "name"), userFromContext(r.Context()), wordParam(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandler) deleteUserWord(w http.ResponseWriter, r *http.Request) {
	if err := h.spellUC.DeleteUserWord(r.Context(), chi.URLParam(r, "name"), userFromContext(r.Context()), wordParam(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// wordParam decodes the {word} segment. chi returns it escaped when the
// request path had escapes Go would not produce itself.
func wordParam(r *http.Request) string {
	raw := chi.URLParam(r, "word")
	if word, err := url.PathUnescape(raw); err == nil {
		return word
	}
	return raw
}
