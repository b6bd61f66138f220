package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/golfcompete/golfcompete/middleware"
	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
	"github.com/golfcompete/golfcompete/services"
)

type NoteHandler struct {
	noteService services.NoteService
}

func NewNoteHandler(noteService services.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input services.CreateNoteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	noteID, err := getIDFromURL(r, "noteID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	note, err := h.noteService.GetNote(r.Context(), userID, noteID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	q := r.URL.Query()
	filter := repositories.NoteFilter{}
	if v := q.Get("resource_type"); v != "" {
		rt := models.NoteResourceType(v)
		filter.ResourceType = &rt
	}
	if v := q.Get("resource_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			badRequestResponse(w, errors.New("resource_id must be a positive integer"))
			return
		}
		filter.ResourceID = &id
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	notes, err := h.noteService.ListNotes(r.Context(), userID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, notes)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	noteID, err := getIDFromURL(r, "noteID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		NoteText string `json:"note_text"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	note, err := h.noteService.UpdateNote(r.Context(), userID, noteID, input.NoteText)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	noteID, err := getIDFromURL(r, "noteID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.noteService.DeleteNote(r.Context(), userID, noteID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, map[string]string{"message": "note deleted"})
}
