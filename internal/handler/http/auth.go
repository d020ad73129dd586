package http

import (
	"net/http"

	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/utils"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var request models.RegisterRequest
	if err := utils.DecodeJSON(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.services.AuthService.Register(ctx, request, deviceFromRequest(r))
	if err != nil {
		writeError(w, r, err, authErrorStatusMap)
		return
	}

	log.Info().Str("user_id", result.User.ID.String()).Msg("user registered")
	utils.WriteJSON(w, models.AuthResponse{User: result.User, TokenPair: result.Tokens}, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request models.LoginRequest
	if err := utils.DecodeJSON(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	tokens, err := h.services.AuthService.Login(ctx, request, deviceFromRequest(r))
	if err != nil {
		writeError(w, r, err, authErrorStatusMap)
		return
	}

	utils.WriteJSON(w, tokens, http.StatusOK)
}

// refresh rotates the token pair of the session named by the refresh token in
// the body. No access token is needed: the refresh token is the credential.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request models.RefreshRequest
	if err := utils.DecodeJSON(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	user, session, err := h.services.AuthService.ResolveRefreshToken(ctx, request.RefreshToken)
	if err != nil {
		writeError(w, r, err, authErrorStatusMap)
		return
	}

	tokens, err := h.services.AuthService.RefreshSession(ctx, user, session, request, deviceFromRequest(r))
	if err != nil {
		writeError(w, r, err, authErrorStatusMap)
		return
	}

	utils.WriteJSON(w, tokens, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, session, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		writeError(w, r, ErrNoIdentityInContext)
		return
	}

	if err := h.services.AuthService.Logout(ctx, user, session); err != nil {
		writeError(w, r, err, authErrorStatusMap)
		return
	}

	logger.FromRequest(r).Info().Msg("session closed by logout")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, _, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		writeError(w, r, ErrNoIdentityInContext)
		return
	}

	withRoles, err := h.services.UserService.GetWithRoles(ctx, user.ID)
	if err != nil {
		writeError(w, r, err, authErrorStatusMap)
		return
	}

	utils.WriteJSON(w, withRoles, http.StatusOK)
}
