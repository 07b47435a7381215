package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/blueshift/inbox/internal/challenge"
	"github.com/blueshift/inbox/internal/config"
	"github.com/blueshift/inbox/internal/inbox"
	"github.com/blueshift/inbox/internal/ledger"
	"github.com/blueshift/inbox/internal/message"
	"github.com/blueshift/inbox/internal/middleware"
	"github.com/blueshift/inbox/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes. DB and Cache
// may be nil in development. Ledger overrides the JSON-RPC client when set.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	Ledger ledger.Ledger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Cfg.ChallengeStore == config.ChallengeStoreRedis && d.Cache == nil {
		return fmt.Errorf("challenge store %q needs a redis client", d.Cfg.ChallengeStore)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key, X-Request-ID",
	}))

	RegisterHealthRoutes(app, d)

	// Services and handlers
	ledgerBackend := d.Ledger
	if ledgerBackend == nil {
		ledgerBackend = ledger.NewRPCClient(d.Cfg.RPCURL, d.Cfg.ProgramID, d.Cfg.RPCTimeout,
			ledger.WithStrictDiscriminator(d.Cfg.StrictDiscriminator),
			ledger.WithLogger(d.Logger),
		)
	}

	var registry challenge.Registry
	if d.Cfg.ChallengeStore == config.ChallengeStoreRedis {
		registry = challenge.NewRedisRegistry(d.Cache, challenge.WithTTL(d.Cfg.ChallengeTTL), challenge.WithLogger(d.Logger))
	} else {
		registry = challenge.NewMemoryRegistry(challenge.WithTTL(d.Cfg.ChallengeTTL))
	}

	var messageRepo message.Repository
	if d.DB != nil {
		messageRepo = message.NewPostgresRepository(d.DB)
	} else {
		messageRepo = message.NewMemoryRepository()
	}
	notifier := notification.NewLoggerNotifier(d.Logger)
	messageSvc := message.NewService(messageRepo, notifier)
	gate := inbox.NewGate(registry, ledgerBackend, messageSvc, d.Logger)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// One bucket per caller and one per handle, so rotating either does not bypass the limit.
	RegisterInboxRoutes(api, inbox.NewHandler(gate),
		middleware.RateLimit(d.Cache, "challenge:ip", d.Cfg.ChallengeRateLimit, middleware.ByIP),
		middleware.RateLimit(d.Cache, "challenge:handle", d.Cfg.ChallengeRateLimit, challengeHandleKey),
	)
	RegisterMessageRoutes(api, message.NewHandler(messageSvc), middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	RegisterProfileRoutes(api, ledgerBackend, d.Logger)

	return nil
}

func challengeHandleKey(c *fiber.Ctx) string {
	return c.Query("handle")
}
