package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	calendarApp "github.com/felixgeelhaar/convene/internal/calendar/application"
	calendarCache "github.com/felixgeelhaar/convene/internal/calendar/infrastructure/cache"
	"github.com/felixgeelhaar/convene/internal/calendar/infrastructure/caldav"
	googleCalendar "github.com/felixgeelhaar/convene/internal/calendar/infrastructure/google"
	"github.com/felixgeelhaar/convene/internal/calendar/infrastructure/ical"
	intentApp "github.com/felixgeelhaar/convene/internal/intent/application"
	"github.com/felixgeelhaar/convene/internal/intent/infrastructure/keyword"
	"github.com/felixgeelhaar/convene/internal/intent/infrastructure/llm"
	schedulingDomain "github.com/felixgeelhaar/convene/internal/scheduling/domain"
	schedulingPersistence "github.com/felixgeelhaar/convene/internal/scheduling/infrastructure/persistence"
	"github.com/felixgeelhaar/convene/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/convene/pkg/config"
	"github.com/felixgeelhaar/convene/pkg/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	_ "modernc.org/sqlite"
)

// Container holds all application dependencies.
type Container struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   observability.Metrics
	Pipeline  *Pipeline
	Decisions schedulingDomain.DecisionRepository
	Publisher eventbus.Publisher

	sqlDB       *sql.DB
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
}

// NewContainer wires every dependency from configuration. Optional
// collaborators (Redis, RabbitMQ, the model extractor) are wired only when
// configured; the pipeline degrades gracefully without them.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = observability.LoggerFromEnv()
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
	}

	source, err := c.buildCalendarSource(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	if err := c.buildDecisionRepository(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.buildPublisher(cfg); err != nil {
		c.Close()
		return nil, err
	}

	intents := c.buildIntentService(cfg)

	c.Pipeline = NewPipeline(
		source,
		intents,
		c.Decisions,
		c.Publisher,
		PipelineConfig{
			LookaheadDays:          cfg.LookaheadDays,
			Location:               cfg.Location(),
			DefaultDurationMinutes: cfg.DefaultDurationMinutes,
		},
		c.Metrics,
		logger,
	)

	return c, nil
}

func (c *Container) buildCalendarSource(cfg *config.Config) (calendarApp.Source, error) {
	registry := calendarApp.NewProviderRegistry()
	registry.Register(calendarApp.ProviderStatic, func() (calendarApp.Source, error) {
		return calendarApp.NewStaticSource(nil), nil
	})
	registry.Register(calendarApp.ProviderICal, func() (calendarApp.Source, error) {
		return ical.NewSource(cfg.ICSDir, c.Logger), nil
	})
	registry.Register(calendarApp.ProviderCalDAV, func() (calendarApp.Source, error) {
		if cfg.CalDAVURL == "" {
			return nil, fmt.Errorf("CALDAV_URL is required for the caldav provider")
		}
		return caldav.NewSource(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, c.Logger), nil
	})
	registry.Register(calendarApp.ProviderGoogle, func() (calendarApp.Source, error) {
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google credentials are required for the google provider")
		}
		return googleCalendar.NewSource(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleTokenDir, c.Logger), nil
	})

	source, err := registry.Create(calendarApp.Provider(cfg.CalendarProvider))
	if err != nil {
		return nil, err
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}
		c.redisClient = redis.NewClient(opts)
		source = calendarCache.NewCachedSource(source, c.redisClient, cfg.CalendarCacheTTL, c.Logger).
			WithMetrics(c.Metrics)
		c.Logger.Info("calendar cache enabled", "ttl", cfg.CalendarCacheTTL)
	}

	return calendarApp.NewGuardedSource(source, calendarApp.DefaultGuardConfig(), c.Logger), nil
}

func (c *Container) buildDecisionRepository(ctx context.Context, cfg *config.Config) error {
	switch cfg.DatabaseDriver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to create Postgres pool: %w", err)
		}
		c.pgPool = pool
		repo := schedulingPersistence.NewPostgresDecisionRepository(pool)
		if err := repo.InitSchema(ctx); err != nil {
			return fmt.Errorf("failed to initialize Postgres schema: %w", err)
		}
		c.Decisions = repo

	case "sqlite":
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open SQLite database: %w", err)
		}
		c.sqlDB = db
		repo := schedulingPersistence.NewSQLiteDecisionRepository(db)
		if err := repo.InitSchema(ctx); err != nil {
			return fmt.Errorf("failed to initialize SQLite schema: %w", err)
		}
		c.Decisions = repo

	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.DatabaseDriver)
	}
	return nil
}

func (c *Container) buildPublisher(cfg *config.Config) error {
	if cfg.RabbitMQURL == "" {
		c.Publisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	c.Publisher = publisher
	return nil
}

func (c *Container) buildIntentService(cfg *config.Config) intentApp.Extractor {
	fallback := keyword.NewExtractor(c.Logger)

	var primary intentApp.Extractor
	if cfg.OpenAIAPIKey != "" {
		extractor, err := llm.NewExtractor(llm.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		}, c.Logger)
		if err != nil {
			c.Logger.Warn("model extractor unavailable, keyword extraction only", "error", err)
		} else {
			primary = extractor
			c.Logger.Info("model-backed intent extraction enabled", "model", cfg.OpenAIModel)
		}
	}

	return intentApp.NewService(primary, fallback, intentApp.DefaultServiceConfig(), c.Logger)
}

// RegisterHealthChecks registers probes for every wired dependency.
func (c *Container) RegisterHealthChecks(health *observability.HealthRegistry) {
	health.Register("decision_log", observability.DatabaseHealthChecker(func(ctx context.Context) error {
		_, err := c.Decisions.ListRecent(ctx, 1)
		return err
	}))
	if c.redisClient != nil {
		health.Register("calendar_cache", observability.RedisHealthChecker(func(ctx context.Context) error {
			return c.redisClient.Ping(ctx).Err()
		}))
	}
	if publisher, ok := c.Publisher.(*eventbus.RabbitMQPublisher); ok {
		health.Register("event_broker", observability.RabbitMQHealthChecker(publisher.Healthy))
	}
}

// Close releases held connections.
func (c *Container) Close() {
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.Warn("error closing publisher", "error", err)
		}
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis client", "error", err)
		}
	}
	if c.sqlDB != nil {
		if err := c.sqlDB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite database", "error", err)
		}
	}
	if c.pgPool != nil {
		c.pgPool.Close()
	}
}
