package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tetherchat/tether/internal/room/service"
	"github.com/tetherchat/tether/internal/room/store"
	"github.com/tetherchat/tether/pkg/httpx"
	"github.com/tetherchat/tether/pkg/identity"
	"github.com/tetherchat/tether/pkg/slogx"

	_ "github.com/tetherchat/tether/api/room" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	identity     identity.Provider
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	RoomService *service.RoomService
	UserService *service.UserService
}

func NewRouter(
	provider identity.Provider,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		identity:     provider,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerRooms()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tether Room Service API
//	@version		0.1.0
//	@description	Two-party room invitation service. Hosts open rooms and invite a single
//	@description	guest by email; the guest redeems a short-lived single-use join code to
//	@description	activate the room.
//
//	@contact.name				TetherChat Team
//	@contact.url				https://github.com/tetherchat/tether
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity credential. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	h := &UserHandler{UserService: r.UserService}

	// POST /enter - moderate rate limit by principal (first-contact endpoint)
	securedEnter := httpx.Chain(http.HandlerFunc(h.HandleEnter),
		httpx.AuthnMiddleware(r.identity),
		httpx.RateLimitByPrincipal(httpx.ModerateLimit),
	)

	// GET /retrieve - lenient rate limit by principal (read-only)
	securedRetrieve := httpx.Chain(http.HandlerFunc(h.HandleRetrieve),
		httpx.AuthnMiddleware(r.identity),
		httpx.RateLimitByPrincipal(httpx.LenientLimit),
	)

	// DELETE /detach - strict rate limit by principal (destructive)
	securedDetach := httpx.Chain(http.HandlerFunc(h.HandleDetach),
		httpx.AuthnMiddleware(r.identity),
		httpx.RateLimitByPrincipal(httpx.StrictLimit),
	)

	r.Mux.Handle("POST /api/user/enter", securedEnter)
	r.Mux.Handle("GET /api/user/retrieve", securedRetrieve)
	r.Mux.Handle("DELETE /api/user/detach", securedDetach)
}

func (r *Router) registerRooms() {
	createHandler := &RoomCreateHandler{RoomService: r.RoomService}
	joinHandler := &RoomJoinHandler{RoomService: r.RoomService}

	// POST /create-room - moderate rate limit by principal
	securedCreate := httpx.Chain(createHandler,
		httpx.AuthnMiddleware(r.identity),
		httpx.RateLimitByPrincipal(httpx.ModerateLimit),
	)

	// POST /join-room - strict rate limit by IP as well as principal
	// (join codes are guessable-in-principle; keep the attempt budget tight)
	securedJoin := httpx.Chain(joinHandler,
		httpx.AuthnMiddleware(r.identity),
		httpx.RateLimitByPrincipal(httpx.StrictLimit),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)

	r.Mux.Handle("POST /api/room/create-room", securedCreate)
	r.Mux.Handle("POST /api/room/join-room", securedJoin)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
