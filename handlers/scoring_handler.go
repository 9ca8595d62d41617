package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/debate-system/middleware"
	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/services"
	"github.com/google/uuid"
)

// ScoringHandler обслуживает протокол результатов и таблицу фазы.
type ScoringHandler struct {
	scoringService   services.ScoringService
	drawService      services.DrawService
	structureService services.StructureService
	roleService      services.RoleService
}

func NewScoringHandler(
	scs services.ScoringService,
	ds services.DrawService,
	ss services.StructureService,
	rs services.RoleService,
) *ScoringHandler {
	return &ScoringHandler{
		scoringService:   scs,
		drawService:      ds,
		structureService: ss,
		roleService:      rs,
	}
}

// requireScorer допускает судью или маршала дебата (организатор проходит
// любую проверку).
func (h *ScoringHandler) requireScorer(w http.ResponseWriter, r *http.Request, debateID uuid.UUID) bool {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return false
	}

	debate, err := h.drawService.GetDebate(r.Context(), debateID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return false
	}
	round, err := h.structureService.GetRound(r.Context(), debate.RoundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return false
	}
	phase, err := h.structureService.GetPhase(r.Context(), round.PhaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return false
	}

	err = h.roleService.RequireRole(r.Context(), userID, phase.TournamentID, models.RoleJudge)
	if errors.Is(err, services.ErrMissingRole) {
		err = h.roleService.RequireRole(r.Context(), userID, phase.TournamentID, models.RoleMarshal)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return false
	}
	return true
}

func (h *ScoringHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	debateID, err := getUUIDFromURL(r, "debateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if !h.requireScorer(w, r, debateID) {
		return
	}

	var input struct {
		AttendeeID      uuid.UUID `json:"attendee_id"`
		IndividualDelta int       `json:"individual_delta"`
		PenaltyDelta    int       `json:"penalty_delta"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.scoringService.RecordResult(r.Context(), services.RecordResultInput{
		DebateID:        debateID,
		AttendeeID:      input.AttendeeID,
		IndividualDelta: input.IndividualDelta,
		PenaltyDelta:    input.PenaltyDelta,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoringHandler) ListDebateResults(w http.ResponseWriter, r *http.Request) {
	debateID, err := getUUIDFromURL(r, "debateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.scoringService.ListDebateResults(r.Context(), debateID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoringHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getUUIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.scoringService.ComputeStandings(r.Context(), phaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
