package deps

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/productbazar/bazar/internal/logger"
	"github.com/productbazar/bazar/internal/search"
	"github.com/productbazar/bazar/internal/session"
	redisstore "github.com/productbazar/bazar/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Sessions    *session.Registry  // per-browser-session state
	Store       *redisstore.Store  // seen-sets and breadcrumbs (nil when Redis is down)
	RedisClient *redis.Client      // raw client for readiness checks
	Planner     *search.Planner    // query rewrite + bucket choice
	Validate    *validator.Validate // submission payload validation

	DefaultPageSize int           // fallback page size for list surfaces
	SessionTTL      time.Duration // mirrored to Redis seen-set TTLs
	CrumbWindow     time.Duration // recommendation refetch suppression window
	TrustProxy      bool          // resolve client IP from proxy headers

	LexiconReloadTrigger chan struct{} // channel to trigger manual lexicon reload
}
