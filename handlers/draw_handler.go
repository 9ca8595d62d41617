package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/debate-system/middleware"
	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/services"
	"github.com/google/uuid"
)

// DrawHandler обслуживает жеребьёвку и точечные переназначения.
// Mutating endpoints are restricted to the adjudicator coordinator of the
// tournament the round belongs to (organizer passes any check).
type DrawHandler struct {
	drawService      services.DrawService
	structureService services.StructureService
	roleService      services.RoleService
}

func NewDrawHandler(ds services.DrawService, ss services.StructureService, rs services.RoleService) *DrawHandler {
	return &DrawHandler{drawService: ds, structureService: ss, roleService: rs}
}

// resolveTournamentByRound walks round -> phase to find the tournament that
// scopes the permission check.
func (h *DrawHandler) resolveTournamentByRound(ctx context.Context, roundID uuid.UUID) (uuid.UUID, error) {
	round, err := h.structureService.GetRound(ctx, roundID)
	if err != nil {
		return uuid.Nil, err
	}
	phase, err := h.structureService.GetPhase(ctx, round.PhaseID)
	if err != nil {
		return uuid.Nil, err
	}
	return phase.TournamentID, nil
}

// requireCoordinator пишет ответ сама, когда проверка не пройдена.
func (h *DrawHandler) requireCoordinator(w http.ResponseWriter, r *http.Request, roundID uuid.UUID) bool {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return false
	}
	tournamentID, err := h.resolveTournamentByRound(r.Context(), roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return false
	}
	if err := h.roleService.RequireRole(r.Context(), userID, tournamentID, models.RoleAdjudicatorCoordinator); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return false
	}
	return true
}

func (h *DrawHandler) GenerateDraw(w http.ResponseWriter, r *http.Request) {
	roundID, err := getUUIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if !h.requireCoordinator(w, r, roundID) {
		return
	}

	var input struct {
		TeamIDs        []uuid.UUID `json:"team_ids"`
		JudgeUserIDs   []uuid.UUID `json:"judge_user_ids"`
		RoomIDs        []uuid.UUID `json:"room_ids"`
		MarshalUserIDs []uuid.UUID `json:"marshal_user_ids"`
		MotionID       *uuid.UUID  `json:"motion_id"`
		GroupSize      *int        `json:"group_size"`
		PanelSize      int         `json:"panel_size"`
		SidePolicy     string      `json:"side_policy"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	debates, err := h.drawService.GenerateDraw(r.Context(), services.GenerateDrawInput{
		RoundID:        roundID,
		TeamIDs:        input.TeamIDs,
		JudgeUserIDs:   input.JudgeUserIDs,
		RoomIDs:        input.RoomIDs,
		MarshalUserIDs: input.MarshalUserIDs,
		MotionID:       input.MotionID,
		GroupSize:      input.GroupSize,
		PanelSize:      input.PanelSize,
		SidePolicy:     input.SidePolicy,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"debates": debates}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DrawHandler) GetDebate(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "debateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	debate, err := h.drawService.GetDebate(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"debate": debate}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DrawHandler) ListDebates(w http.ResponseWriter, r *http.Request) {
	roundID, err := getUUIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	debates, err := h.drawService.ListDebates(r.Context(), roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"debates": debates}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// requireCoordinatorByDebate авторизует изменение уже созданного дебата.
func (h *DrawHandler) requireCoordinatorByDebate(w http.ResponseWriter, r *http.Request, debateID uuid.UUID) bool {
	debate, err := h.drawService.GetDebate(r.Context(), debateID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return false
	}
	return h.requireCoordinator(w, r, debate.RoundID)
}

func (h *DrawHandler) ReassignTeam(w http.ResponseWriter, r *http.Request) {
	debateID, err := getUUIDFromURL(r, "debateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if !h.requireCoordinatorByDebate(w, r, debateID) {
		return
	}

	var input struct {
		CurrentTeamID uuid.UUID `json:"current_team_id"`
		NewTeamID     uuid.UUID `json:"new_team_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.drawService.ReassignTeam(r.Context(), debateID, input.CurrentTeamID, input.NewTeamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondWithDebate(w, r, debateID)
}

func (h *DrawHandler) ReassignJudge(w http.ResponseWriter, r *http.Request) {
	debateID, err := getUUIDFromURL(r, "debateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if !h.requireCoordinatorByDebate(w, r, debateID) {
		return
	}

	var input struct {
		CurrentJudgeID uuid.UUID `json:"current_judge_id"`
		NewJudgeID     uuid.UUID `json:"new_judge_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.drawService.ReassignJudge(r.Context(), debateID, input.CurrentJudgeID, input.NewJudgeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondWithDebate(w, r, debateID)
}

func (h *DrawHandler) ReassignRoom(w http.ResponseWriter, r *http.Request) {
	debateID, err := getUUIDFromURL(r, "debateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if !h.requireCoordinatorByDebate(w, r, debateID) {
		return
	}

	var input struct {
		NewRoomID uuid.UUID `json:"new_room_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.drawService.ReassignRoom(r.Context(), debateID, input.NewRoomID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondWithDebate(w, r, debateID)
}

func (h *DrawHandler) SetMarshal(w http.ResponseWriter, r *http.Request) {
	debateID, err := getUUIDFromURL(r, "debateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if !h.requireCoordinatorByDebate(w, r, debateID) {
		return
	}

	var input struct {
		MarshalUserID *uuid.UUID `json:"marshal_user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.drawService.SetMarshal(r.Context(), debateID, input.MarshalUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondWithDebate(w, r, debateID)
}

func (h *DrawHandler) SetPropositionSide(w http.ResponseWriter, r *http.Request) {
	debateID, err := getUUIDFromURL(r, "debateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if !h.requireCoordinatorByDebate(w, r, debateID) {
		return
	}

	var input struct {
		TeamID uuid.UUID `json:"team_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.drawService.SetPropositionSide(r.Context(), debateID, input.TeamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondWithDebate(w, r, debateID)
}

func (h *DrawHandler) respondWithDebate(w http.ResponseWriter, r *http.Request, debateID uuid.UUID) {
	debate, err := h.drawService.GetDebate(r.Context(), debateID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"debate": debate}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
