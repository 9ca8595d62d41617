package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/services"
	"github.com/google/uuid"
)

// StructureHandler обслуживает фазы и раунды турнира.
type StructureHandler struct {
	structureService services.StructureService
}

func NewStructureHandler(ss services.StructureService) *StructureHandler {
	return &StructureHandler{structureService: ss}
}

func (h *StructureHandler) CreatePhase(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name            string     `json:"name"`
		IsFinals        bool       `json:"is_finals"`
		PreviousPhaseID *uuid.UUID `json:"previous_phase_id"`
		GroupSize       *int       `json:"group_size"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phase, err := h.structureService.CreatePhase(r.Context(), services.CreatePhaseInput{
		TournamentID:    tournamentID,
		Name:            input.Name,
		IsFinals:        input.IsFinals,
		PreviousPhaseID: input.PreviousPhaseID,
		GroupSize:       input.GroupSize,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"phase": phase}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StructureHandler) GetPhase(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phase, err := h.structureService.GetPhase(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"phase": phase}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StructureHandler) ListPhases(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phases, err := h.structureService.ListPhases(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"phases": phases}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StructureHandler) TransitionPhaseStatus(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phase, err := h.structureService.TransitionPhaseStatus(r.Context(), id, models.Status(input.Status))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"phase": phase}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StructureHandler) ReopenPhase(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phase, err := h.structureService.ReopenPhase(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"phase": phase}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StructureHandler) DeletePhase(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.structureService.DeletePhase(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StructureHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getUUIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name             string     `json:"name"`
		PlannedStartTime *time.Time `json:"planned_start_time"`
		PlannedEndTime   *time.Time `json:"planned_end_time"`
		MotionID         *uuid.UUID `json:"motion_id"`
		PreviousRoundID  *uuid.UUID `json:"previous_round_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.structureService.CreateRound(r.Context(), services.CreateRoundInput{
		PhaseID:          phaseID,
		Name:             input.Name,
		PlannedStartTime: input.PlannedStartTime,
		PlannedEndTime:   input.PlannedEndTime,
		MotionID:         input.MotionID,
		PreviousRoundID:  input.PreviousRoundID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StructureHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.structureService.GetRound(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StructureHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getUUIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.structureService.ListRounds(r.Context(), phaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StructureHandler) TransitionRoundStatus(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.structureService.TransitionRoundStatus(r.Context(), id, models.Status(input.Status))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StructureHandler) ReopenRound(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.structureService.ReopenRound(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StructureHandler) DeleteRound(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.structureService.DeleteRound(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
