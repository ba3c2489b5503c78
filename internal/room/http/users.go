package http

import (
	"net/http"

	"github.com/tetherchat/tether/internal/room/service"
	"github.com/tetherchat/tether/pkg/httpx"
	"github.com/tetherchat/tether/pkg/slogx"
)

type UserHandler struct {
	UserService *service.UserService
}

// HandleEnter godoc
//
//	@Summary		User Enter Endpoint
//	@Description	Create the caller's user record on first contact, or refresh its last-login timestamp on every later call.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	roomsdk.UserResponse	"The caller's user record"
//	@Failure		401	{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/user/enter [post].
func (h *UserHandler) HandleEnter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	user, err := h.UserService.Enter(ctx, principal)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleRetrieve godoc
//
//	@Summary		User Retrieve Endpoint
//	@Description	Fetch the caller's user record.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	roomsdk.UserResponse	"The caller's user record"
//	@Failure		401	{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/user/retrieve [get].
func (h *UserHandler) HandleRetrieve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	user, err := h.UserService.Retrieve(ctx, principal)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDetach godoc
//
//	@Summary		User Detach Endpoint
//	@Description	Remove the caller's account: revoke the external credential, disable the record, and delete it where referential constraints allow.
//	@Description	Records still referenced by rooms are disabled immediately and purged later by housekeeping.
//	@Tags			Users
//	@Produce		json
//	@Success		204	"Account removed"
//	@Failure		401	{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/user/detach [delete].
func (h *UserHandler) HandleDetach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	if err := h.UserService.Remove(ctx, principal); err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info("user detached", "uid", principal.UID)
	w.WriteHeader(http.StatusNoContent)
}
