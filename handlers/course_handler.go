package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/golfcompete/golfcompete/middleware"
	"github.com/golfcompete/golfcompete/services"
)

const maxImageUploadSize = 10 << 20 // 10MB

type CourseHandler struct {
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input services.CreateCourseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	course, err := h.courseService.CreateCourse(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, course)
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "courseID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	include := r.URL.Query().Get("include")
	includeHoles := include == "holes" || include == "all"
	includeTees := include == "tees" || include == "all"

	course, err := h.courseService.GetCourse(r.Context(), id, includeHoles, includeTees)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, course)
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	courses, err := h.courseService.ListCourses(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, courses)
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	id, err := getIDFromURL(r, "courseID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateCourseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	course, err := h.courseService.UpdateCourse(r.Context(), userID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, course)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	id, err := getIDFromURL(r, "courseID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.courseService.DeleteCourse(r.Context(), userID, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, map[string]string{"message": "course deleted"})
}

func (h *CourseHandler) AddHole(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	courseID, err := getIDFromURL(r, "courseID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.CreateHoleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	hole, err := h.courseService.AddHole(r.Context(), userID, courseID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, hole)
}

func (h *CourseHandler) UpdateHole(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	holeID, err := getIDFromURL(r, "holeID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.CreateHoleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	hole, err := h.courseService.UpdateHole(r.Context(), userID, holeID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, hole)
}

func (h *CourseHandler) DeleteHole(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	holeID, err := getIDFromURL(r, "holeID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.courseService.DeleteHole(r.Context(), userID, holeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, map[string]string{"message": "hole deleted"})
}

// ReplaceHoles swaps the course's entire hole set. An empty list is allowed
// and removes every hole.
func (h *CourseHandler) ReplaceHoles(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	courseID, err := getIDFromURL(r, "courseID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Holes []services.CreateHoleInput `json:"holes"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.Holes == nil {
		badRequestResponse(w, errors.New("holes is required"))
		return
	}

	holes, err := h.courseService.ReplaceHoles(r.Context(), userID, courseID, input.Holes)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, holes)
}

func (h *CourseHandler) AddTee(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	courseID, err := getIDFromURL(r, "courseID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.CreateTeeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tee, err := h.courseService.AddTee(r.Context(), userID, courseID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, tee)
}

func (h *CourseHandler) UpdateTee(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	teeID, err := getIDFromURL(r, "teeID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.CreateTeeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tee, err := h.courseService.UpdateTee(r.Context(), userID, teeID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, tee)
}

func (h *CourseHandler) DeleteTee(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	teeID, err := getIDFromURL(r, "teeID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.courseService.DeleteTee(r.Context(), userID, teeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, map[string]string{"message": "tee deleted"})
}

func (h *CourseHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	courseID, err := getIDFromURL(r, "courseID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadSize)
	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		badRequestResponse(w, errors.New("could not parse multipart form"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		badRequestResponse(w, errors.New("image file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	course, err := h.courseService.UploadCourseImage(r.Context(), userID, courseID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, course)
}
