package app

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/catalog"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/memory"
	mongoadapter "github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/mongo"
	natsadapter "github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/notifier"
	redisadapter "github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/tracer"
	grpcserver "github.com/Abdurahmanit/GroupProject/cart-service/internal/port/grpc"
	httpserver "github.com/Abdurahmanit/GroupProject/cart-service/internal/port/http"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "cart-service"

type App struct {
	cfg            *config.Config
	log            logger.Logger
	httpServer     *httpserver.Server
	grpcServer     *grpcserver.Server
	metricsServer  *nethttp.Server
	redisClient    *redis.Client
	mongoClient    *mongo.Client
	natsConn       *nats.Conn
	tracerProvider *sdktrace.TracerProvider
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
		Service:    serviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s, storage: %s, notifier: %s",
		cfg.Env, cfg.HTTPServer.Port, cfg.Storage.Driver, cfg.Notifier.Kind)

	application := &App{cfg: cfg, log: appLogger}
	application.tracerProvider = tracer.InitTracer(serviceName, cfg.Tracing.OTLPEndpoint, appLogger)

	snapshots, err := application.initSnapshotStore(ctx)
	if err != nil {
		application.closeClients(ctx)
		return nil, err
	}

	catalogClient, err := catalog.NewClient(catalog.ClientConfig{BaseURL: cfg.Catalog.BaseURL, Timeout: cfg.Catalog.Timeout})
	if err != nil {
		application.closeClients(ctx)
		return nil, fmt.Errorf("failed to initialize catalog client: %w", err)
	}
	appLogger.Infof("Catalog client initialized for %s", cfg.Catalog.BaseURL)

	metricsManager := metrics.NewMetricsManager("storefront")

	cartNotifier, events, err := application.initNotifications()
	if err != nil {
		application.closeClients(ctx)
		return nil, err
	}

	store := service.NewCartStore(catalogClient, snapshots, appLogger, metricsManager, service.CartStoreConfig{
		SnapshotKey: cfg.Storage.SnapshotKey,
	})
	if events != nil {
		store.Subscribe(func(ctx context.Context, cart entity.Cart) {
			if err := events.PublishCartChanged(ctx, cart); err != nil {
				appLogger.Warnf("Failed to publish cart change: %v", err)
			}
		})
	}
	if err := store.Load(ctx); err != nil {
		application.closeClients(ctx)
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	appLogger.Info("CartStore initialized")

	provider := service.NewCartProvider(store, cartNotifier, appLogger, metricsManager)
	handler := httpserver.NewCartHandler(provider, catalogClient, appLogger)

	application.httpServer = httpserver.NewServer(
		appLogger,
		cfg.HTTPServer.Port,
		httpserver.NewRouter(handler, appLogger),
		cfg.HTTPServer.ReadTimeout,
		cfg.HTTPServer.WriteTimeout,
	)
	application.grpcServer = grpcserver.NewServer(appLogger, cfg.GRPCServer.Port, cfg.GRPCServer.MaxConnectionIdle, snapshots)
	application.metricsServer = metrics.NewServer(cfg.Metrics.Port, metricsManager.Registry)
	appLogger.Info("Servers created")

	return application, nil
}

func (a *App) initSnapshotStore(ctx context.Context) (repository.SnapshotStore, error) {
	switch a.cfg.Storage.Driver {
	case config.StorageDriverRedis:
		a.log.Info("Initializing Redis client...")
		client, err := redisadapter.NewClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		a.redisClient = client
		a.log.Info("Redis client initialized successfully")
		return redisadapter.NewSnapshotStore(client), nil
	case config.StorageDriverMongo:
		a.log.Info("Initializing MongoDB client...")
		client, err := mongoadapter.NewClient(ctx, a.cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
		}
		a.mongoClient = client
		a.log.Info("MongoDB client initialized successfully")
		return mongoadapter.NewSnapshotStore(client, a.cfg.MongoDB), nil
	default:
		a.log.Warn("Using in-memory snapshot store: the cart will not survive a restart")
		return memory.NewSnapshotStore(), nil
	}
}

func (a *App) initNotifications() (repository.Notifier, repository.CartEventPublisher, error) {
	if a.cfg.Notifier.Kind != config.NotifierNATS {
		return notifier.NewLogNotifier(a.log), nil, nil
	}

	conn, err := natsadapter.NewConnection(a.cfg.NATS, a.log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize NATS connection: %w", err)
	}
	a.natsConn = conn

	publisher, err := natsadapter.NewNATSPublisher(conn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
	}
	a.log.Infof("NATS notifications on %s, cart events on %s", a.cfg.NATS.NotificationSubject, a.cfg.NATS.CartChangedSubject)

	return natsadapter.NewNotifier(publisher, a.cfg.NATS.NotificationSubject, a.log),
		natsadapter.NewCartEventPublisher(publisher, a.cfg.NATS.CartChangedSubject),
		nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()

	go func() {
		if err := a.httpServer.Start(); err != nil {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()
	go func() {
		if err := a.grpcServer.Start(); err != nil {
			a.log.Fatalf("Failed to start gRPC server: %v", err)
		}
	}()
	go a.grpcServer.WatchStore(watchCtx)
	go metrics.Serve(a.metricsServer, a.log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)
	stopWatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	}
	if err := a.grpcServer.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during gRPC server graceful shutdown: %v", err)
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.log.Errorf("Error shutting down metrics server: %v", err)
		}
	}

	a.closeClients(shutdownCtx)
	if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("Error shutting down tracer provider: %v", err)
	}
	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}

func (a *App) closeClients(ctx context.Context) {
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Errorf("Error draining NATS connection: %v", err)
		}
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}
}
