package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	horsesdomain "stable-app-go/internal/domain/horses"
)

type horseRequest struct {
	Name     string                 `json:"name"`
	Breed    string                 `json:"breed"`
	Age      int                    `json:"age"`
	Color    string                 `json:"color"`
	Feedings []horsesdomain.Feeding `json:"feedings"`
}

type horseResponse struct {
	ID        string                 `json:"id"`
	OwnerID   string                 `json:"owner_id"`
	Name      string                 `json:"name"`
	Breed     string                 `json:"breed"`
	Age       int                    `json:"age"`
	Color     string                 `json:"color"`
	Feedings  []horsesdomain.Feeding `json:"feedings"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (h *Handlers) ListMyHorses(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.Horses.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "horses.list_mine: list failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toHorseResponses(items))
}

func (h *Handlers) ListStableHorses(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.Horses.ListForStable(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "horses.list_stable: list failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toHorseResponses(items))
}

func (h *Handlers) CreateHorse(w http.ResponseWriter, r *http.Request) {
	h.upsertHorse(w, r, "", http.StatusCreated)
}

// ReplaceHorse overwrites every field of the horse. Feedings left out of the body are removed.
func (h *Handlers) ReplaceHorse(w http.ResponseWriter, r *http.Request) {
	horseID := strings.TrimSpace(chi.URLParam(r, "id"))
	if horseID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}
	h.upsertHorse(w, r, horseID, http.StatusOK)
}

func (h *Handlers) upsertHorse(w http.ResponseWriter, r *http.Request, horseID string, status int) {
	var req horseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	horse, err := h.Horses.UpsertHorse(r.Context(), user.ID, horsesdomain.HorseInput{
		ID:       horseID,
		Name:     req.Name,
		Breed:    req.Breed,
		Age:      req.Age,
		Color:    req.Color,
		Feedings: req.Feedings,
	})
	if err != nil {
		h.fail(w, "horses.upsert: save failed", err, "user_id", user.ID, "horse_id", horseID)
		return
	}

	writeJSON(w, status, toHorseResponse(horse))
}

func toHorseResponses(items []horsesdomain.Horse) []horseResponse {
	response := make([]horseResponse, 0, len(items))
	for i := range items {
		response = append(response, toHorseResponse(&items[i]))
	}
	return response
}

func toHorseResponse(horse *horsesdomain.Horse) horseResponse {
	feedings := []horsesdomain.Feeding(horse.Feedings)
	if feedings == nil {
		feedings = []horsesdomain.Feeding{}
	}
	return horseResponse{
		ID:        horse.ID,
		OwnerID:   horse.OwnerID,
		Name:      horse.Name,
		Breed:     horse.Breed,
		Age:       horse.Age,
		Color:     horse.Color,
		Feedings:  feedings,
		UpdatedAt: horse.UpdatedAt,
	}
}
