package http

import (
	"errors"
	"net/http"

	"github.com/tetherchat/tether/internal/room/domain"
	"github.com/tetherchat/tether/internal/room/service"
	"github.com/tetherchat/tether/pkg/httpx"
	"github.com/tetherchat/tether/pkg/roomsdk"
	"github.com/tetherchat/tether/pkg/slogx"
)

func toRoomResponse(rm domain.Room) roomsdk.RoomResponse {
	return roomsdk.RoomResponse{
		ID:            rm.ID,
		Name:          rm.Name,
		HostID:        rm.HostID,
		InviteeEmail:  rm.InviteeEmail,
		GuestID:       rm.GuestID,
		Status:        string(rm.Status),
		CodeExpiresAt: rm.CodeExpiresAt,
		CreatedAt:     rm.CreatedAt,
		UpdatedAt:     rm.UpdatedAt,
	}
}

func toUserResponse(u domain.User) roomsdk.UserResponse {
	return roomsdk.UserResponse{
		ID:          u.ID,
		UID:         u.UID,
		Email:       u.Email,
		Disabled:    u.Disabled,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// writeServiceError maps service sentinels to the uniform error body.
// Reason strings are stable: clients branch on them.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, roomsdk.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "user not found",
		})
	case errors.Is(err, service.ErrInviteeNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, roomsdk.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "invitee not found",
		})
	case errors.Is(err, service.ErrCodeNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, roomsdk.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "code not found",
		})
	case errors.Is(err, service.ErrInvalidRoomRequest):
		httpx.WriteJSON(w, http.StatusBadRequest, roomsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "invalid request",
		})
	case errors.Is(err, service.ErrCodeExpired):
		httpx.WriteJSON(w, http.StatusBadRequest, roomsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "expired",
		})
	case errors.Is(err, service.ErrCodeAlreadyUsed):
		httpx.WriteJSON(w, http.StatusBadRequest, roomsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "already used",
		})
	case errors.Is(err, service.ErrRoomUnavailable):
		httpx.WriteJSON(w, http.StatusBadRequest, roomsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "unavailable",
		})
	case errors.Is(err, service.ErrNotInvitee):
		httpx.WriteJSON(w, http.StatusBadRequest, roomsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "not invitee",
		})
	case errors.Is(err, service.ErrSelfJoin):
		httpx.WriteJSON(w, http.StatusBadRequest, roomsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "self-join",
		})
	case errors.Is(err, service.ErrSelfInvite):
		httpx.WriteJSON(w, http.StatusBadRequest, roomsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "self-invite",
		})
	case errors.Is(err, service.ErrAlreadyHosting):
		httpx.WriteJSON(w, http.StatusConflict, roomsdk.ErrorResponse{
			Error:            "conflict",
			ErrorDescription: "already hosting",
		})
	case errors.Is(err, service.ErrAlreadyInRoom):
		httpx.WriteJSON(w, http.StatusConflict, roomsdk.ErrorResponse{
			Error:            "conflict",
			ErrorDescription: "already participating",
		})
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, roomsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "internal error",
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusUnauthorized, roomsdk.ErrorResponse{
		Error:            "unauthorized",
		ErrorDescription: "authentication required",
	})
}
