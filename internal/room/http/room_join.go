package http

import (
	"encoding/json"
	"net/http"

	"github.com/tetherchat/tether/internal/room/service"
	"github.com/tetherchat/tether/pkg/httpx"
	"github.com/tetherchat/tether/pkg/roomsdk"
	"github.com/tetherchat/tether/pkg/slogx"
)

type RoomJoinHandler struct {
	RoomService *service.RoomService
}

// ServeHTTP godoc
//
//	@Summary		Join Room Endpoint
//	@Description	Redeem a single-use join code. On success the room moves to ACTIVE and the caller becomes its guest.
//	@Description	A code can be redeemed at most once; expired or consumed codes are rejected.
//	@Tags			Rooms
//	@Accept			json
//	@Produce		json
//	@Param			request	body		roomsdk.JoinRoomRequest	true	"Join code"
//	@Success		200		{object}	roomsdk.RoomResponse	"The activated room"
//	@Failure		400		{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	roomsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/room/join-room [post].
func (h *RoomJoinHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req roomsdk.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, roomsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	rm, err := h.RoomService.Join(ctx, principal, req.RoomKeyCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info("room joined",
		"room_id", rm.ID,
		"guest_id", rm.GuestID,
	)
	httpx.WriteJSON(w, http.StatusOK, toRoomResponse(rm))
}
