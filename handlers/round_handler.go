package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/golfcompete/golfcompete/middleware"
	"github.com/golfcompete/golfcompete/services"
)

type RoundHandler struct {
	roundService services.RoundService
}

func NewRoundHandler(roundService services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: roundService}
}

func (h *RoundHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input services.StartRoundInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.CourseID <= 0 || input.TeeID <= 0 || input.BagID <= 0 {
		badRequestResponse(w, errors.New("course_id, tee_id, and bag_id are required"))
		return
	}

	round, err := h.roundService.StartRound(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, round)
}

func (h *RoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	includeScores := r.URL.Query().Get("include") == "scores"
	round, err := h.roundService.GetRound(r.Context(), id, includeScores)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, round)
}

func (h *RoundHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	rounds, err := h.roundService.ListRounds(r.Context(), userID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, rounds)
}

func (h *RoundHandler) AddHoleScore(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.AddHoleScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	round, err := h.roundService.AddHoleScore(r.Context(), userID, roundID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, round)
}

func (h *RoundHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		TotalScore int `json:"total_score"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	round, err := h.roundService.CompleteRound(r.Context(), userID, roundID, input.TotalScore)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, round)
}

func (h *RoundHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.roundService.DeleteRound(r.Context(), userID, roundID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, map[string]string{"message": "round deleted"})
}
