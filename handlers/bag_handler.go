package handlers

import (
	"net/http"

	"github.com/golfcompete/golfcompete/middleware"
	"github.com/golfcompete/golfcompete/services"
)

type BagHandler struct {
	bagService services.BagService
}

func NewBagHandler(bagService services.BagService) *BagHandler {
	return &BagHandler{bagService: bagService}
}

func (h *BagHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input services.CreateBagInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	bag, err := h.bagService.CreateBag(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusCreated, bag)
}

func (h *BagHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	bagID, err := getIDFromURL(r, "bagID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	bag, err := h.bagService.GetBag(r.Context(), userID, bagID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, bag)
}

func (h *BagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	bags, err := h.bagService.ListBags(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, bags)
}

func (h *BagHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	bagID, err := getIDFromURL(r, "bagID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.CreateBagInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	bag, err := h.bagService.UpdateBag(r.Context(), userID, bagID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, bag)
}

func (h *BagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	bagID, err := getIDFromURL(r, "bagID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.bagService.DeleteBag(r.Context(), userID, bagID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, map[string]string{"message": "bag deleted"})
}
