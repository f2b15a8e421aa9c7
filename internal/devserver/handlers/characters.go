package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/runnervault/internal/common"
	"github.com/dmitrijs2005/runnervault/internal/devserver/httpx"
)

// maxCharacterDocSize bounds a single character document.
const maxCharacterDocSize = 1 << 20

// ListCharacters returns the user's characters in insertion order.
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r)

	docs, err := h.store.ListCharacters(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "list characters failed", "error", err)
		httpx.RespondError(w, http.StatusInternalServerError, "failed to list characters")
		return
	}

	list := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		list = append(list, json.RawMessage(doc))
	}
	httpx.RespondJSON(w, http.StatusOK, list)
}

// CreateCharacter stores a new character document under a fresh id and
// returns the stored representation.
func (h *Handler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r)

	doc, ok := readCharacterDoc(w, r)
	if !ok {
		return
	}

	doc["_id"] = uuid.NewString()

	stored, err := json.Marshal(doc)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "failed to encode character")
		return
	}

	if err := h.store.CreateCharacter(r.Context(), doc["_id"].(string), userID, stored); err != nil {
		h.log.Error(r.Context(), "create character failed", "error", err)
		httpx.RespondError(w, http.StatusInternalServerError, "failed to create character")
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, doc)
}

// UpdateCharacter replaces the document of an existing character owned by
// the user and returns the stored representation.
func (h *Handler) UpdateCharacter(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r)
	id := chi.URLParam(r, "id")

	doc, ok := readCharacterDoc(w, r)
	if !ok {
		return
	}

	// The path id is authoritative; whatever id the payload carries is
	// overwritten.
	doc["_id"] = id

	stored, err := json.Marshal(doc)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "failed to encode character")
		return
	}

	if err := h.store.UpdateCharacter(r.Context(), id, userID, stored); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "character not found")
			return
		}
		h.log.Error(r.Context(), "update character failed", "error", err)
		httpx.RespondError(w, http.StatusInternalServerError, "failed to update character")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, doc)
}

func readCharacterDoc(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxCharacterDocSize))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "character must be a JSON object")
		return nil, false
	}
	return doc, true
}
