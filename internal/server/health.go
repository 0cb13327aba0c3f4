package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type DBPinger interface {
	PingContext(ctx context.Context) error
}

type RedisPinger interface {
	Ping(ctx context.Context) error
}

type AuthorityChecker interface {
	HealthCheck(ctx context.Context) bool
}

// HealthController reports dependency reachability. A degraded authority
// does not fail the endpoint; checkout has its own fail-open policy for it.
type HealthController struct {
	db        DBPinger
	redis     RedisPinger
	authority AuthorityChecker
	logger    *zap.Logger
}

func NewHealthController(db DBPinger, redis RedisPinger, authority AuthorityChecker, logger *zap.Logger) *HealthController {
	return &HealthController{
		db:        db,
		redis:     redis,
		authority: authority,
		logger:    logger,
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
	Authority string `json:"authority"`
}

func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Database:  "ok",
		Redis:     "ok",
		Authority: "ok",
	}
	status := http.StatusOK

	if err := c.db.PingContext(r.Context()); err != nil {
		c.logger.Warn("database unreachable", zap.Error(err))
		resp.Database = "down"
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	if err := c.redis.Ping(r.Context()); err != nil {
		c.logger.Warn("redis unreachable", zap.Error(err))
		resp.Redis = "down"
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	if !c.authority.HealthCheck(r.Context()) {
		resp.Authority = "down"
		if resp.Status == "ok" {
			resp.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		c.logger.Error("failed to encode health response", zap.Error(err))
	}
}
