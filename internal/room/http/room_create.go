package http

import (
	"encoding/json"
	"net/http"

	"github.com/tetherchat/tether/internal/room/service"
	"github.com/tetherchat/tether/pkg/httpx"
	"github.com/tetherchat/tether/pkg/roomsdk"
	"github.com/tetherchat/tether/pkg/slogx"
)

type RoomCreateHandler struct {
	RoomService *service.RoomService
}

// ServeHTTP godoc
//
//	@Summary		Create Room Endpoint
//	@Description	Open a new pending room and mint a single-use join code for the invitee. The caller becomes the room host.
//	@Description	The raw join code is delivered out-of-band and never appears in the response.
//	@Tags			Rooms
//	@Accept			json
//	@Produce		json
//	@Param			request	body		roomsdk.CreateRoomRequest	true	"Room name and invitee email"
//	@Success		201		{object}	roomsdk.RoomResponse		"The pending room"
//	@Failure		400		{object}	roomsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	roomsdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	roomsdk.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	roomsdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	roomsdk.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/room/create-room [post].
func (h *RoomCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req roomsdk.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, roomsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	rm, err := h.RoomService.Create(ctx, principal, req.Name, req.InviteeEmail)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info("room created",
		"room_id", rm.ID,
		"host_id", rm.HostID,
	)
	httpx.WriteJSON(w, http.StatusCreated, toRoomResponse(rm))
}
