package handlers

import (
	"net/http"

	"github.com/Dosada05/debate-system/services"
)

type LocationHandler struct {
	locationService services.LocationService
}

func NewLocationHandler(ls services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: ls}
}

func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name    string  `json:"name"`
		Address *string `json:"address"`
		Remarks *string `json:"remarks"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	location, err := h.locationService.CreateLocation(r.Context(), services.LocationInput{
		TournamentID: tournamentID,
		Name:         input.Name,
		Address:      input.Address,
		Remarks:      input.Remarks,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"location": location}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "locationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	location, err := h.locationService.GetLocationByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"location": location}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	locations, err := h.locationService.ListLocations(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"locations": locations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "locationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.locationService.DeleteLocation(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LocationHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	locationID, err := getUUIDFromURL(r, "locationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name    string  `json:"name"`
		Remarks *string `json:"remarks"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	room, err := h.locationService.CreateRoom(r.Context(), services.RoomInput{
		LocationID: locationID,
		Name:       input.Name,
		Remarks:    input.Remarks,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"room": room}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LocationHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	locationID, err := getUUIDFromURL(r, "locationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rooms, err := h.locationService.ListRooms(r.Context(), locationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rooms": rooms}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LocationHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "roomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.locationService.DeleteRoom(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
