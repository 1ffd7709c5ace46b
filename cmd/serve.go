package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/shenikar/guardian_response/docs"
	"github.com/shenikar/guardian_response/internal/alarm"
	"github.com/shenikar/guardian_response/internal/config"
	"github.com/shenikar/guardian_response/internal/feed"
	v1 "github.com/shenikar/guardian_response/internal/handler/http/v1"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/shenikar/guardian_response/internal/repository"
	"github.com/shenikar/guardian_response/internal/repository/sqlite"
	"github.com/shenikar/guardian_response/internal/safety"
	"github.com/shenikar/guardian_response/internal/service"
	"github.com/shenikar/guardian_response/internal/synchronizer"
	"github.com/shenikar/guardian_response/internal/workflow"
	"github.com/shenikar/guardian_response/pkg/logger"
	"github.com/shenikar/guardian_response/pkg/postgres"
	redisclient "github.com/shenikar/guardian_response/pkg/redis"
)

const (
	dashboardReopenDelay = 2 * time.Second
	shutdownTimeout      = 5 * time.Second
)

type serveOptions struct {
	migrate bool
}

var serveOpts serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and the server dashboard session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), serveOpts)
	},
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&serveOpts.migrate, "migrate", true, "apply PostgreSQL migrations before start")
}

// storage - всё, что зависит от выбранного драйвера хранилища
type storage struct {
	incidents interface {
		service.IncidentRepository
		synchronizer.IncidentStore
	}
	responses workflow.ResponseLog
	officers  v1.OfficerDirectory
	source    feed.Source
	close     func()
}

func runServe(ctx context.Context, opts serveOptions) error {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Инициализация Redis клиента, без него работают кеш-промахи и лог-оповещения
	redisClient, err := redisclient.NewClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, officer cache and alarm queue disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")
	}

	store, err := openStorage(ctx, cfg, opts, redisClient, log)
	if err != nil {
		return err
	}
	defer store.close()

	// Оповещения о новых инцидентах: лог всегда, очередь и вебхук при наличии Redis
	notifiers := alarm.Multi{alarm.NewLogNotifier(log)}
	if redisClient != nil {
		notifiers = append(notifiers, alarm.NewRedisNotifier(redisClient, log))
		if cfg.AlarmWebhookURL != "" {
			alarm.NewWorker(redisClient, log, alarm.WorkerConfig{
				WebhookURL:    cfg.AlarmWebhookURL,
				WebhookSecret: cfg.AlarmWebhookSecret,
				Timeout:       cfg.AlarmWebhookTimeout,
				MaxRetries:    uint(max(cfg.AlarmMaxRetries, 1)),
				RetryInterval: time.Second,
			}).Start(ctx)
		}
	}

	syncOpts := []synchronizer.Option{
		synchronizer.WithMarkerWindow(cfg.MarkerWindow),
		synchronizer.WithRedeliveryWindow(cfg.RedeliveryWindow),
	}
	dashboard := &serverDashboard{}
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		dashboard.run(ctx, store.incidents, store.source, notifiers, log, syncOpts)
	}()

	// Инициализация сервисов
	incidentService := service.NewIncidentService(store.incidents, log, nil)
	engine := workflow.NewEngine(store.responses, store.incidents, log)

	deps := v1.Deps{
		Incidents: incidentService,
		Workflow:  engine,
		Dashboard: dashboard,
		Sessions:  synchronizer.NewFactory(store.incidents, store.source, log, syncOpts...),
		Officers:  store.officers,
	}
	if cfg.SafetyConfigPath != "" {
		safetyCfg, err := config.LoadSafetyAPI(cfg.SafetyConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load safety config: %w", err)
		}
		deps.Scores = safety.NewClient(*safetyCfg, log)
		log.WithField("base_url", safetyCfg.BaseURL).Info("Route safety scoring enabled")
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(deps, log, cfg.APIKeys, []byte(cfg.JWTSecret))

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-API-Key",
		},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: corsHandler.Handler(router),
	}

	// Запуск сервера в горутине
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal, shutting down server...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("error starting HTTP server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server gracefully stopped")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, opts serveOptions, redisClient *goredis.Client, log *logrus.Logger) (*storage, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		broker := feed.NewBroker(0)
		store, err := sqlite.Open(cfg.SQLitePath, broker, log)
		if err != nil {
			broker.Close()
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		log.WithField("path", cfg.SQLitePath).Info("Using SQLite store")
		return &storage{
			incidents: store,
			responses: store,
			officers:  store.Officers(),
			source:    broker,
			close: func() {
				broker.Close()
				_ = store.Close()
			},
		}, nil

	default:
		// Запуск миграций
		if opts.migrate {
			if err := runMigrations(cfg, log, false); err != nil {
				return nil, fmt.Errorf("failed to run database migrations: %w", err)
			}
		}

		// Подключение к PostgreSQL
		dbpool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.Options{MaxConns: int32(cfg.DBMaxConns)})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		log.Info("Successfully connected to PostgreSQL")
		return &storage{
			incidents: repository.NewIncidentRepository(dbpool),
			responses: repository.NewResponseRepository(dbpool),
			officers:  repository.NewOfficerRepository(dbpool, redisClient, log),
			source:    feed.NewPGNotifySource(dbpool, feed.DefaultChannel, log),
			close:     dbpool.Close,
		}, nil
	}
}

// serverDashboard держит долгоживущую сессию сервера и переоткрывает её при потере потока
type serverDashboard struct {
	mu      sync.RWMutex
	current *synchronizer.Synchronizer
}

func (d *serverDashboard) Snapshot() synchronizer.View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.current == nil {
		return synchronizer.View{Incidents: []models.Incident{}, Loading: true}
	}
	return d.current.Snapshot()
}

func (d *serverDashboard) run(ctx context.Context, store synchronizer.IncidentStore, source feed.Source, notifier alarm.Notifier, log *logrus.Logger, opts []synchronizer.Option) {
	for ctx.Err() == nil {
		s := synchronizer.New(store, notifier, log, opts...)
		sess, err := synchronizer.Open(ctx, source, s)
		if err != nil {
			log.WithError(err).Error("Failed to open dashboard session")
			s.Close()
		} else {
			d.mu.Lock()
			d.current = s
			d.mu.Unlock()
			log.Info("Dashboard session opened")

			select {
			case <-ctx.Done():
			case <-sess.Done():
				log.Warn("Dashboard session lost, reopening")
			}
			_ = sess.Close()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(dashboardReopenDelay):
		}
	}
}

var _ v1.Dashboard = (*serverDashboard)(nil)
