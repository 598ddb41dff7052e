package handlers

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/avatarworks/gateway/internal/api/middleware"
	"github.com/avatarworks/gateway/internal/session"
)

type HealthHandler struct {
	db       *pgxpool.Pool
	redis    *redis.Client
	sessions *session.Manager
}

func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client, sessions *session.Manager) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, sessions: sessions}
}

// Health reports liveness, dependency checks, and a snapshot of the
// caller's own session.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.Ping(r.Context()).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	status := "healthy"
	code := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	token := middleware.SessionToken(r.Context())
	sess, _ := h.sessions.Get(token)

	writeJSON(w, code, map[string]interface{}{
		"status":          status,
		"checks":          checks,
		"authenticated":   sess.Authenticated,
		"session_name":    sess.DisplayName,
		"active_sessions": h.sessions.Len(),
	})
}
