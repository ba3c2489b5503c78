package room_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tetherchat/tether/internal/room/domain"
	roomhttp "github.com/tetherchat/tether/internal/room/http"
	"github.com/tetherchat/tether/internal/room/service"
	"github.com/tetherchat/tether/internal/room/store/drivers/sqlite"
	"github.com/tetherchat/tether/pkg/identity"
	"github.com/tetherchat/tether/pkg/roomsdk"
)

// codeRecorder is the out-of-band delivery channel for tests: it
// remembers the raw join code per room so test guests can redeem it.
type codeRecorder struct {
	mu    sync.Mutex
	codes map[string]string
}

func newCodeRecorder() *codeRecorder {
	return &codeRecorder{codes: make(map[string]string)}
}

func (c *codeRecorder) Deliver(ctx context.Context, rm domain.Room, rawCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[rm.ID] = rawCode
	return nil
}

func (c *codeRecorder) codeFor(roomID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[roomID]
}

// setupRoomServer builds a full in-process service instance backed by
// an in-memory database and returns its base URL, the identity provider
// used to mint test credentials, and the delivery recorder.
func setupRoomServer(t *testing.T) (string, *identity.HMACProvider, *codeRecorder) {
	t.Helper()
	return setupRoomServerTTL(t, service.DefaultCodeTTL)
}

func setupRoomServerTTL(t *testing.T, codeTTL time.Duration) (string, *identity.HMACProvider, *codeRecorder) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	provider := identity.NewHMACProvider([]byte("e2e-test-secret"))
	recorder := newCodeRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := roomhttp.NewRouter(provider, "e2e", st, logger)
	router.RoomService = &service.RoomService{
		Store:    st,
		Delivery: recorder,
		CodeTTL:  codeTTL,
	}
	router.UserService = &service.UserService{
		Store:    st,
		Identity: provider,
	}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server.URL, provider, recorder
}

// enterAs mints a credential for uid/email, registers the account and
// returns a ready-to-use client.
func enterAs(t *testing.T, baseURL string, provider *identity.HMACProvider, uid, email string) *roomsdk.Client {
	t.Helper()

	token, err := provider.Mint(uid, email, time.Hour)
	require.NoError(t, err)

	client := roomsdk.NewClient(baseURL, token)
	user, err := client.Enter(t.Context())
	require.NoError(t, err)
	require.Equal(t, uid, user.UID)

	return client
}
