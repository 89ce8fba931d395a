package handler

import (
	"net/http"
	"time"

	announcementsdomain "stable-app-go/internal/domain/announcements"
)

type postAnnouncementRequest struct {
	Text string `json:"text"`
}

type announcementResponse struct {
	ID          string    `json:"id"`
	StableID    string    `json:"stable_id"`
	AuthorID    string    `json:"author_id"`
	Text        string    `json:"text"`
	DisplayDate string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *Handlers) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.Announcements.ListForStable(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "announcements.list: list failed", err, "user_id", user.ID)
		return
	}

	response := make([]announcementResponse, 0, len(items))
	for i := range items {
		response = append(response, toAnnouncementResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) PostAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req postAnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	announcement, err := h.Announcements.Post(r.Context(), user.ID, req.Text)
	if err != nil {
		h.fail(w, "announcements.post: post failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toAnnouncementResponse(announcement))
}

func toAnnouncementResponse(announcement *announcementsdomain.Announcement) announcementResponse {
	return announcementResponse{
		ID:          announcement.ID,
		StableID:    announcement.StableID,
		AuthorID:    announcement.AuthorID,
		Text:        announcement.Text,
		DisplayDate: announcement.DisplayDate,
		CreatedAt:   announcement.CreatedAt,
	}
}
