package room_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tetherchat/tether/pkg/roomsdk"
)

// TestInviteAndJoinFlow walks the happy path end to end: the host opens
// a room inviting the guest by email, the guest redeems the delivered
// code, and the room becomes active with both parties bound.
func TestInviteAndJoinFlow(t *testing.T) {
	baseURL, provider, recorder := setupRoomServer(t)

	host := enterAs(t, baseURL, provider, "uid-alice", "alice@example.com")
	guest := enterAs(t, baseURL, provider, "uid-bob", "bob@example.com")

	rm, err := host.CreateRoom(t.Context(), "Project Sync", "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, "PENDING", rm.Status)
	require.Empty(t, rm.GuestID)
	require.WithinDuration(t, rm.CreatedAt.Add(15*time.Minute), rm.CodeExpiresAt, 2*time.Second)

	code := recorder.codeFor(rm.ID)
	require.NotEmpty(t, code, "join code should have been delivered out-of-band")

	joined, err := guest.JoinRoom(t.Context(), code)
	require.NoError(t, err)
	require.Equal(t, rm.ID, joined.ID)
	require.Equal(t, "ACTIVE", joined.Status)
	require.Equal(t, rm.HostID, joined.HostID)
	require.NotEmpty(t, joined.GuestID)
}

// TestJoinCodeIsSingleUse verifies a redeemed code is dead for everyone,
// including the guest who consumed it.
func TestJoinCodeIsSingleUse(t *testing.T) {
	baseURL, provider, recorder := setupRoomServer(t)

	host := enterAs(t, baseURL, provider, "uid-alice", "alice@example.com")
	guest := enterAs(t, baseURL, provider, "uid-bob", "bob@example.com")

	rm, err := host.CreateRoom(t.Context(), "Once Only", "bob@example.com")
	require.NoError(t, err)
	code := recorder.codeFor(rm.ID)

	_, err = guest.JoinRoom(t.Context(), code)
	require.NoError(t, err)

	_, err = guest.JoinRoom(t.Context(), code)
	require.Error(t, err)
	require.True(t, roomsdk.IsStatus(err, http.StatusBadRequest))
	apiErr := err.(*roomsdk.APIError)
	require.Equal(t, "already used", apiErr.Description)
}

// TestJoinExpiredCode uses a server whose codes expire immediately.
func TestJoinExpiredCode(t *testing.T) {
	baseURL, provider, recorder := setupRoomServerTTL(t, time.Nanosecond)

	host := enterAs(t, baseURL, provider, "uid-alice", "alice@example.com")
	guest := enterAs(t, baseURL, provider, "uid-bob", "bob@example.com")

	rm, err := host.CreateRoom(t.Context(), "Too Late", "bob@example.com")
	require.NoError(t, err)
	code := recorder.codeFor(rm.ID)

	_, err = guest.JoinRoom(t.Context(), code)
	require.Error(t, err)
	require.True(t, roomsdk.IsStatus(err, http.StatusBadRequest))
	require.Equal(t, "expired", err.(*roomsdk.APIError).Description)
}

// TestHostCannotJoinOwnRoom covers the host redeeming their own code.
func TestHostCannotJoinOwnRoom(t *testing.T) {
	baseURL, provider, recorder := setupRoomServer(t)

	host := enterAs(t, baseURL, provider, "uid-alice", "alice@example.com")
	enterAs(t, baseURL, provider, "uid-bob", "bob@example.com")

	rm, err := host.CreateRoom(t.Context(), "My Own Room", "bob@example.com")
	require.NoError(t, err)
	code := recorder.codeFor(rm.ID)

	_, err = host.JoinRoom(t.Context(), code)
	require.Error(t, err)
	require.True(t, roomsdk.IsStatus(err, http.StatusBadRequest))
	require.Equal(t, "self-join", err.(*roomsdk.APIError).Description)
}

// TestOnlyInviteeMayJoin rejects a third party holding a valid code.
func TestOnlyInviteeMayJoin(t *testing.T) {
	baseURL, provider, recorder := setupRoomServer(t)

	host := enterAs(t, baseURL, provider, "uid-alice", "alice@example.com")
	enterAs(t, baseURL, provider, "uid-bob", "bob@example.com")
	eavesdropper := enterAs(t, baseURL, provider, "uid-carol", "carol@example.com")

	rm, err := host.CreateRoom(t.Context(), "Private", "bob@example.com")
	require.NoError(t, err)
	code := recorder.codeFor(rm.ID)

	_, err = eavesdropper.JoinRoom(t.Context(), code)
	require.Error(t, err)
	require.True(t, roomsdk.IsStatus(err, http.StatusBadRequest))
	require.Equal(t, "not invitee", err.(*roomsdk.APIError).Description)
}

// TestHostExclusivity allows at most one open room per host.
func TestHostExclusivity(t *testing.T) {
	baseURL, provider, _ := setupRoomServer(t)

	host := enterAs(t, baseURL, provider, "uid-alice", "alice@example.com")
	enterAs(t, baseURL, provider, "uid-bob", "bob@example.com")

	_, err := host.CreateRoom(t.Context(), "First", "bob@example.com")
	require.NoError(t, err)

	_, err = host.CreateRoom(t.Context(), "Second", "bob@example.com")
	require.Error(t, err)
	require.True(t, roomsdk.IsStatus(err, http.StatusConflict))
	require.Equal(t, "already hosting", err.(*roomsdk.APIError).Description)
}

// TestSelfInviteRejected blocks inviting your own email address.
func TestSelfInviteRejected(t *testing.T) {
	baseURL, provider, _ := setupRoomServer(t)

	host := enterAs(t, baseURL, provider, "uid-alice", "alice@example.com")

	_, err := host.CreateRoom(t.Context(), "Solo", "Alice@Example.com")
	require.Error(t, err)
	require.True(t, roomsdk.IsStatus(err, http.StatusBadRequest))
	require.Equal(t, "self-invite", err.(*roomsdk.APIError).Description)
}

// TestInviteeMustBeRegistered rejects inviting an unknown email.
func TestInviteeMustBeRegistered(t *testing.T) {
	baseURL, provider, _ := setupRoomServer(t)

	host := enterAs(t, baseURL, provider, "uid-alice", "alice@example.com")

	_, err := host.CreateRoom(t.Context(), "Ghost Invite", "nobody@example.com")
	require.Error(t, err)
	require.True(t, roomsdk.IsStatus(err, http.StatusNotFound))
	require.Equal(t, "invitee not found", err.(*roomsdk.APIError).Description)
}

// TestUnknownCodeRejected covers a syntactically fine but unknown code.
func TestUnknownCodeRejected(t *testing.T) {
	baseURL, provider, _ := setupRoomServer(t)

	guest := enterAs(t, baseURL, provider, "uid-bob", "bob@example.com")

	_, err := guest.JoinRoom(t.Context(), "7c1f9a52-0000-4000-8000-000000000000")
	require.Error(t, err)
	require.True(t, roomsdk.IsStatus(err, http.StatusNotFound))
	require.Equal(t, "code not found", err.(*roomsdk.APIError).Description)
}
