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

type SeriesHandler struct {
	seriesService services.SeriesService
}

func NewSeriesHandler(seriesService services.SeriesService) *SeriesHandler {
	return &SeriesHandler{seriesService: seriesService}
}

func (h *SeriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input services.CreateSeriesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	series, err := h.seriesService.CreateSeries(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, series)
}

func (h *SeriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "seriesID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	q := r.URL.Query()
	includeParticipants := q.Get("include_participants") == "true" || q.Get("include") == "participants"
	series, err := h.seriesService.GetSeries(r.Context(), id, includeParticipants)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, series)
}

func (h *SeriesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.SeriesFilter{
		SortBy:  q.Get("sort_by"),
		SortDir: q.Get("sort_dir"),
	}
	if v := q.Get("status"); v != "" {
		status := models.SeriesStatus(v)
		filter.Status = &status
	}
	if v := q.Get("search"); v != "" {
		filter.Search = v
	}
	if v := q.Get("start_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequestResponse(w, errors.New("start_after must be an RFC 3339 timestamp"))
			return
		}
		filter.StartDateAfter = &t
	}
	if v := q.Get("end_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequestResponse(w, errors.New("end_before must be an RFC 3339 timestamp"))
			return
		}
		filter.EndDateBefore = &t
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	series, err := h.seriesService.ListSeries(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, series)
}

func (h *SeriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	id, err := getIDFromURL(r, "seriesID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateSeriesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	series, err := h.seriesService.UpdateSeries(r.Context(), userID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, series)
}

func (h *SeriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	id, err := getIDFromURL(r, "seriesID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.seriesService.DeleteSeries(r.Context(), userID, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, map[string]string{"message": "series deleted"})
}

func (h *SeriesHandler) InviteParticipant(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	seriesID, err := getIDFromURL(r, "seriesID")
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

	participant, err := h.seriesService.InviteParticipant(r.Context(), userID, seriesID, input.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, participant)
}

func (h *SeriesHandler) RespondToInvitation(w http.ResponseWriter, r *http.Request) {
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

	participant, err := h.seriesService.RespondToInvitation(r.Context(), userID, participantID, *input.Accept)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, participant)
}
