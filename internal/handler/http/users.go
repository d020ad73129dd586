package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/utils"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.services.UserService.GetWithRoles(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, user, http.StatusOK)
}

// updateUser applies a partial update. Absent JSON keys are left untouched; a
// null username, password or OAuth field clears it.
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var request models.UserUpdateRequest
	if err = utils.DecodeJSON(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.services.UserService.UpdateFromRequest(r.Context(), id, request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, user, http.StatusOK)
}

// deleteUser soft-deletes by default; ?hard=true removes the row and its
// sessions.
func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	hard := false
	if value := r.URL.Query().Get("hard"); value != "" {
		if hard, err = strconv.ParseBool(value); err != nil {
			writeError(w, r, utils.ErrInvalidPathParam)
			return
		}
	}

	if hard {
		err = h.services.UserService.HardDelete(ctx, id)
	} else {
		_, err = h.services.UserService.SoftDelete(ctx, id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Str("target_user_id", id.String()).Bool("hard", hard).Msg("user deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) assignUserRoles(w http.ResponseWriter, r *http.Request) {
	h.changeUserRoles(w, r, h.services.UserService.AssignRoles)
}

func (h *Handler) removeUserRoles(w http.ResponseWriter, r *http.Request) {
	h.changeUserRoles(w, r, h.services.UserService.RemoveRoles)
}

type userRolesFunc func(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error)

func (h *Handler) changeUserRoles(w http.ResponseWriter, r *http.Request, change userRolesFunc) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var request models.IDsRequest
	if err = utils.DecodeJSON(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := change(r.Context(), id, request.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, user, http.StatusOK)
}
