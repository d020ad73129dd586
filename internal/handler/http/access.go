package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pedro-fs-garcia/filmmash-api/internal/utils"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var request models.RoleCreate
	if err := utils.DecodeJSON(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	role, err := h.services.RoleService.Create(r.Context(), request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, role, http.StatusCreated)
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	role, err := h.services.RoleService.GetWithPermissions(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, role, http.StatusOK)
}

func (h *Handler) assignRolePermissions(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var request models.IDsRequest
	if err = utils.DecodeJSON(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	role, err := h.services.RoleService.AssignPermissions(r.Context(), id, request.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, role, http.StatusOK)
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	var request models.PermissionCreate
	if err := utils.DecodeJSON(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	permission, err := h.services.PermissionService.Create(r.Context(), request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, permission, http.StatusCreated)
}

func (h *Handler) getPermission(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	permission, err := h.services.PermissionService.GetWithRoles(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, permission, http.StatusOK)
}
