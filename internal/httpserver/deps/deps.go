package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/voicelist/internal/catalog"
	"github.com/MrSnakeDoc/voicelist/internal/dialog"
	"github.com/MrSnakeDoc/voicelist/internal/logger"
	redisstore "github.com/MrSnakeDoc/voicelist/internal/store/redis"
)

type Deps struct {
	Logger             logger.Logger
	StartTime          time.Time
	Version            string
	Commit             string
	BuildDate          string
	GoVersion          string
	TimeNow            func() time.Time  // for testing, defaults to time.Now
	AllowedHosts       []string          // Host headers allowed to access the ops endpoints
	AllowedCIDRS       []string          // IPs allowed to access healthz/readyz/infra/reload
	CORSOrigins        []string          // browser origins allowed to call /search
	TrustProxy         bool              // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Locale             string            // active locale pack name
	CatalogFile        string            // path to the product catalog file
	RedisClient        *redis.Client     // Redis client connection
	Store              *redisstore.Store // user/task store
	Engine             *dialog.Engine    // conversation engine behind the webhook
	Catalog            *catalog.Holder   // currently served product catalog
	SearchLimit        int               // max products per /search response
	SearchBurst        int               // /search rate limit burst per IP
	SearchRefillPerMin int               // /search rate limit refill per IP
	ReloadTrigger      chan struct{}     // Channel to trigger manual catalog reload
}
