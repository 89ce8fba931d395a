package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	eventsdomain "stable-app-go/internal/domain/events"
)

type createEventRequest struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateEventRequest struct {
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type recurringRequest struct {
	Start   string `json:"start"`
	Days    int    `json:"days"`
	InTime  string `json:"in_time"`
	OutTime string `json:"out_time"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	StableID    string    `json:"stable_id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      *string   `json:"user_id"`
	UserName    *string   `json:"user_name"`
	CreatedBy   string    `json:"created_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	from, err := parseDateParam(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid from date")
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid to date")
		return
	}

	items, err := h.Events.ListEvents(r.Context(), user.ID, eventsdomain.ListFilter{From: from, To: to})
	if err != nil {
		h.fail(w, "events.list: list failed", err, "user_id", user.ID)
		return
	}

	response := make([]eventResponse, 0, len(items))
	for i := range items {
		response = append(response, toEventResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	date, err := parseDateRequired(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	event, err := h.Events.CreateEvent(r.Context(), user.ID, eventsdomain.EventInput{
		Date:        date,
		Time:        req.Time,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.fail(w, "events.create: create failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (h *Handlers) GenerateRecurringEvents(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	start, err := parseDateParam(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "start must be YYYY-MM-DD")
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	input := eventsdomain.RecurringInput{Days: req.Days, InTime: req.InTime, OutTime: req.OutTime}
	if start != nil {
		input.Start = *start
	}

	created, err := h.Events.GenerateRecurringInOut(r.Context(), user.ID, input)
	if err != nil {
		h.fail(w, "events.recurring: generate failed", err, "user_id", user.ID)
		return
	}

	response := make([]eventResponse, 0, len(created))
	for i := range created {
		response = append(response, toEventResponse(&created[i]))
	}
	writeJSON(w, http.StatusCreated, response)
}

func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	patch := eventsdomain.EventPatch{Time: req.Time, Title: req.Title, Description: req.Description}
	if req.Date != nil {
		date, err := parseDateRequired(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
		patch.Date = &date
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	eventID := strings.TrimSpace(chi.URLParam(r, "id"))
	event, err := h.Events.EditEvent(r.Context(), user.ID, eventID, patch)
	if err != nil {
		h.fail(w, "events.update: update failed", err, "user_id", user.ID, "event_id", eventID)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	eventID := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.Events.DeleteEvent(r.Context(), user.ID, eventID); err != nil {
		h.fail(w, "events.delete: delete failed", err, "user_id", user.ID, "event_id", eventID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SignUpForEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	displayName := user.Name
	if strings.TrimSpace(displayName) == "" {
		displayName = user.Email
	}

	eventID := strings.TrimSpace(chi.URLParam(r, "id"))
	event, err := h.Events.SignUp(r.Context(), user.ID, displayName, eventID)
	if err != nil {
		h.fail(w, "events.sign_up: claim failed", err, "user_id", user.ID, "event_id", eventID)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *Handlers) ResignFromEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	eventID := strings.TrimSpace(chi.URLParam(r, "id"))
	event, err := h.Events.Resign(r.Context(), user.ID, eventID)
	if err != nil {
		h.fail(w, "events.resign: release failed", err, "user_id", user.ID, "event_id", eventID)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *Handlers) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	body, err := h.Events.ExportICS(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "events.export: build calendar failed", err, "user_id", user.ID)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="stable.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func toEventResponse(event *eventsdomain.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		StableID:    event.StableID,
		Date:        event.Date.Format(eventsdomain.DateLayout),
		Time:        event.Time,
		Title:       event.Title,
		Description: event.Description,
		UserID:      event.UserID,
		UserName:    event.UserName,
		CreatedBy:   event.CreatedBy,
		UpdatedAt:   event.UpdatedAt,
	}
}
