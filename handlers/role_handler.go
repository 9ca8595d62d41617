package handlers

import (
	"net/http"

	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/services"
	"github.com/google/uuid"
)

// RoleHandler обслуживает турнирные роли и аффилиации судей.
type RoleHandler struct {
	roleService services.RoleService
}

func NewRoleHandler(rs services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: rs}
}

func (h *RoleHandler) GrantRoles(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Roles []models.Role `json:"roles"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	roles, err := h.roleService.GrantRoles(r.Context(), userID, tournamentID, input.Roles)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"roles": roles}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoleHandler) GetRoles(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	roles, err := h.roleService.GetRoles(r.Context(), userID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roles": roles}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoleHandler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Roles []models.Role `json:"roles"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	roles, err := h.roleService.UpdateRoles(r.Context(), userID, tournamentID, input.Roles)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roles": roles}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoleHandler) RevokeRoles(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roleService.RevokeRoles(r.Context(), userID, tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoleHandler) CreateAffiliation(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TeamID      uuid.UUID `json:"team_id"`
		JudgeUserID uuid.UUID `json:"judge_user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	affiliation, err := h.roleService.CreateAffiliation(r.Context(), services.AffiliationInput{
		TournamentID: tournamentID,
		TeamID:       input.TeamID,
		JudgeUserID:  input.JudgeUserID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"affiliation": affiliation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoleHandler) ListAffiliations(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	affiliations, err := h.roleService.ListAffiliations(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"affiliations": affiliations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoleHandler) DeleteAffiliation(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "affiliationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roleService.DeleteAffiliation(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
