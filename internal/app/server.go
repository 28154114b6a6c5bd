// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"coldlist-service/internal/config"
	"coldlist-service/internal/db"
	coldListHandler "coldlist-service/internal/handlers/coldlist"
	vendorHandler "coldlist-service/internal/handlers/vendor"
	"coldlist-service/internal/middleware"
	"coldlist-service/internal/pkg/jwt"
	"coldlist-service/internal/pkg/lock"
	"coldlist-service/internal/pkg/session"
	"coldlist-service/internal/repository/memory"
	"coldlist-service/internal/repository/postgres"
	coldListUsecase "coldlist-service/internal/service/coldlist"
	vendorUsecase "coldlist-service/internal/service/vendor"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	http   *http.Server
	logger *zap.Logger

	mu      sync.Mutex
	closers []func()
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()

	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}

	return &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		http: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: engine,
		},
	}
}

// stores bundles the repositories behind the service ports.
type stores struct {
	coldLists coldListUsecase.ColdListRepository
	vendors   interface {
		coldListUsecase.VendorDirectory
		vendorUsecase.VendorRepository
	}
	tasks coldListUsecase.TaskSink
}

func (s *Server) Start() error {
	ctx := context.Background()
	logger := s.logger

	loc, err := s.cfg.Location()
	if err != nil {
		return err
	}

	// ----- Storage -----
	st, err := s.openStores(ctx)
	if err != nil {
		return err
	}

	// ----- Redis (optional) -----
	var redisClient *redis.Client
	if s.cfg.RedisAddr != "" {
		redisClient, err = db.NewRedisClient(db.RedisConfig{
			Addresses: []string{s.cfg.RedisAddr},
			Password:  s.cfg.RedisPass,
			DB:        s.cfg.RedisDB,
			PoolSize:  10,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		s.onShutdown(func() { _ = redisClient.Close() })
		logger.Info("connected to redis", zap.String("addr", s.cfg.RedisAddr))
	}

	// ----- Locking -----
	var locker lock.Locker
	switch {
	case s.cfg.LockBackend == "redis" && redisClient != nil:
		locker = lock.NewRedisLocker(redisClient, s.cfg.LockTTL, s.cfg.LockWait, logger)
	case s.cfg.LockBackend == "redis":
		logger.Warn("LOCK_BACKEND=redis but REDIS_ADDR is empty, using in-process locks")
		locker = lock.NewLocalLocker(s.cfg.LockWait)
	default:
		locker = lock.NewLocalLocker(s.cfg.LockWait)
	}

	// ----- JWT -----
	verifier, err := jwt.LoadVerifier(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Services (Usecases) -----
	coldListService := coldListUsecase.NewColdListService(
		st.coldLists,
		st.vendors,
		st.tasks,
		locker,
		coldListUsecase.Options{
			Location:   loc,
			DateLayout: s.cfg.TaskDateLayout,
		},
		logger,
	)
	vendorService := vendorUsecase.NewVendorService(st.vendors, logger)

	// ----- Middlewares -----
	var (
		blacklist middleware.TokenBlacklist
		rateLimit gin.HandlerFunc
	)
	if redisClient != nil {
		blacklist = session.NewBlacklist(redisClient)
		rateLimit = middleware.RateLimit(
			session.NewRateLimiter(redisClient),
			s.cfg.RateLimitRequests,
			s.cfg.RateLimitWindow,
			logger,
		)
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier, blacklist, logger)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.CORSOrigins),
	)

	// ----- Router -----
	handlers := &Handlers{
		ColdListHandler: coldListHandler.NewColdListHandler(coldListService),
		VendorHandler:   vendorHandler.NewVendorHandler(vendorService),
		AuthMiddleware:  authMiddleware,
		RateLimit:       rateLimit,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	logger.Info("server running",
		zap.String("addr", s.cfg.HTTPAddr),
		zap.String("storage", s.cfg.StorageDriver),
		zap.String("timezone", loc.String()),
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) openStores(ctx context.Context) (*stores, error) {
	switch s.cfg.StorageDriver {
	case "memory":
		s.logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &stores{
			coldLists: store.ColdLists(),
			vendors:   store.Vendors(),
			tasks:     store.Tasks(),
		}, nil

	case "postgres":
		pool, err := db.ConnectDB(ctx, db.PostgresConfig{
			URL:      s.cfg.DatabaseURL,
			MaxConns: s.cfg.DBMaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		s.onShutdown(pool.Close)
		s.logger.Info("connected to postgres")

		dbWrapper := postgres.NewDB(pool)
		return &stores{
			coldLists: postgres.NewColdListRepository(dbWrapper),
			vendors:   postgres.NewVendorRepository(dbWrapper),
			tasks:     postgres.NewTaskRepository(dbWrapper),
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (want postgres or memory)", s.cfg.StorageDriver)
	}
}

func (s *Server) onShutdown(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, fn)
}

// Shutdown drains in-flight requests, then releases pools in reverse order.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)

	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	_ = s.logger.Sync()

	return err
}

// ShutdownTimeout is the configured grace period for Shutdown.
func (s *Server) ShutdownTimeout() time.Duration {
	return s.cfg.ShutdownTimeout
}
