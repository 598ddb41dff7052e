package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/avatarworks/gateway/internal/api/handlers"
	"github.com/avatarworks/gateway/internal/api/middleware"
	"github.com/avatarworks/gateway/internal/cache"
	"github.com/avatarworks/gateway/internal/chat"
	"github.com/avatarworks/gateway/internal/config"
	"github.com/avatarworks/gateway/internal/face"
	"github.com/avatarworks/gateway/internal/identity"
	"github.com/avatarworks/gateway/internal/llm"
	"github.com/avatarworks/gateway/internal/queue"
	"github.com/avatarworks/gateway/internal/session"
	"github.com/avatarworks/gateway/internal/storage"
	"github.com/avatarworks/gateway/internal/ttsbridge"
)

type Router struct {
	mux      *chi.Mux
	db       *pgxpool.Pool
	redis    *redis.Client
	cfg      *config.Config
	store    identity.Store
	index    *identity.Index
	sessions *session.Manager
	codec    *session.TokenCodec
	files    storage.Storage
	queue    *queue.Client
	llmGW    llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, files storage.Storage, index *identity.Index, queueClient *queue.Client) *Router {
	return &Router{
		mux:      chi.NewRouter(),
		db:       db,
		redis:    rdb,
		cfg:      cfg,
		store:    identity.NewPgStore(db),
		index:    index,
		sessions: session.NewManager(cfg.Session.TTL),
		codec:    session.NewTokenCodec(cfg.Session.Secret, cfg.Session.TTL),
		files:    files,
		queue:    queueClient,
		llmGW:    llm.NewGateway(cfg.LLM),
	}
}

// Sessions exposes the session manager so main can run the sweeper.
func (rt *Router) Sessions() *session.Manager { return rt.sessions }

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.AllowedOrigins))

	rl := middleware.NewRateLimiter(50, 100)
	r.Use(rl.Limit)
	r.Use(middleware.Sessions(rt.codec, rt.sessions))

	// A nil *queue.Client must stay a nil interface inside the resolver.
	var enqueuer identity.Enqueuer
	if rt.queue != nil {
		enqueuer = rt.queue
	}

	resolver := identity.NewResolver(
		rt.store,
		rt.index,
		face.NewClient(rt.cfg.Face.APIURL),
		face.NewEuclideanMatcher(rt.cfg.Face.Tolerance),
		rt.files,
		enqueuer,
	)

	enrichCache := cache.NewEnrichmentCache(rt.redis, 0)
	enricher := session.NewEnrichmentReader(rt.store, enrichCache)
	chatSvc := chat.NewService(rt.llmGW, rt.sessions, enricher, rt.cfg.LLM.DefaultModel, rt.cfg.LLM.Temperature)

	identityH := handlers.NewIdentityHandler(resolver, rt.sessions, rt.codec, rt.files)
	chatH := handlers.NewChatHandler(chatSvc)
	healthH := handlers.NewHealthHandler(rt.db, rt.redis, rt.sessions)
	staticH := handlers.NewStaticHandler(rt.cfg.Static)

	r.Route("/api", func(r chi.Router) {
		r.Post("/recognize", identityH.Recognize)
		r.Post("/signup", identityH.Signup)
		r.Get("/username", identityH.Username)
		r.Post("/logout", identityH.Logout)
		r.Get("/resume/{name}", identityH.Resume)
		r.Get("/health", healthH.Health)
	})

	r.Post("/avatar/api/chat", chatH.AvatarChat)
	r.Post("/chat", chatH.SimpleChat)

	r.Method(http.MethodGet, "/tts-ws", ttsbridge.New(rt.cfg.TTS))
	r.Method(http.MethodPost, "/tts-proxy", ttsbridge.NewHTTPProxy(rt.cfg.TTS))

	r.Get("/models/*", staticH.Models)
	r.Get("/modules/*", staticH.Modules)
	r.Get("/public/*", staticH.Public)
	r.NotFound(staticH.SPAFallback)

	return r
}
