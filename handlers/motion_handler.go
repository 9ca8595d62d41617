package handlers

import (
	"net/http"

	"github.com/Dosada05/debate-system/services"
)

type MotionHandler struct {
	motionService services.MotionService
}

func NewMotionHandler(ms services.MotionService) *MotionHandler {
	return &MotionHandler{motionService: ms}
}

func (h *MotionHandler) CreateMotion(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Motion string  `json:"motion"`
		AdInfo *string `json:"ad_info"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	motion, err := h.motionService.CreateMotion(r.Context(), services.MotionInput{
		Motion: input.Motion,
		AdInfo: input.AdInfo,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"motion": motion}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MotionHandler) GetMotion(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "motionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	motion, err := h.motionService.GetMotionByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"motion": motion}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MotionHandler) ListMotions(w http.ResponseWriter, r *http.Request) {
	motions, err := h.motionService.ListMotions(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"motions": motions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MotionHandler) UpdateMotion(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "motionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Motion string  `json:"motion"`
		AdInfo *string `json:"ad_info"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	motion, err := h.motionService.UpdateMotion(r.Context(), id, services.MotionInput{
		Motion: input.Motion,
		AdInfo: input.AdInfo,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"motion": motion}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MotionHandler) DeleteMotion(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "motionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.motionService.DeleteMotion(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
