package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golfcompete/golfcompete/middleware"
	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
	"github.com/golfcompete/golfcompete/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input services.CreateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, event)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	includeParticipants := r.URL.Query().Get("include") == "participants"
	event, err := h.eventService.GetEvent(r.Context(), id, includeParticipants)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, event)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.EventFilter{}

	if v := q.Get("status"); v != "" {
		status := models.EventStatus(v)
		filter.Status = &status
	}
	if v := q.Get("series_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			badRequestResponse(w, errors.New("series_id must be a positive integer"))
			return
		}
		filter.SeriesID = &id
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequestResponse(w, errors.New("date_from must be an RFC 3339 timestamp"))
			return
		}
		filter.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequestResponse(w, errors.New("date_to must be an RFC 3339 timestamp"))
			return
		}
		filter.DateTo = &t
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	events, err := h.eventService.ListEvents(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, events)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), userID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), userID, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

func (h *EventHandler) InviteParticipant(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		UserID int `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.UserID <= 0 {
		badRequestResponse(w, errors.New("user_id is required"))
		return
	}

	participant, err := h.eventService.InviteParticipant(r.Context(), userID, eventID, input.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, participant)
}

func (h *EventHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.eventService.RemoveParticipant(r.Context(), userID, participantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, map[string]string{"message": "participant removed"})
}

func (h *EventHandler) RespondToInvitation(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Accept *bool `json:"accept"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.Accept == nil {
		badRequestResponse(w, errors.New("accept is required"))
		return
	}

	participant, err := h.eventService.RespondToInvitation(r.Context(), userID, participantID, *input.Accept)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, participant)
}
