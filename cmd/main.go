// hr-candidate-review: candidate tracking backend
//
// REST API used by the HR dashboard to:
//   - list, filter, sort and search candidates
//   - create candidates and bulk-import JSON, CSV or YAML files
//   - update status, stage and rating
//   - download a per-candidate profile PDF
//
// The read and status-update operations are also served over gRPC.
// Writes publish EVENT_CANDIDATE_* messages to Redis when REDIS_URL is set.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	_ "github.com/varsharamanujam/HR-Candidate-Review-Tool/docs"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/candidate"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/config"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/db"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/events"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/grpcserver"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/logging"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/metrics"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/middleware"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/render"
)

const (
	serviceName = "hr-candidate-review"
	version     = "1.0.0"
)

// @title HR Candidate Review API
// @version 1.0
// @description Candidate tracking backend: filtering, search, bulk import, status updates and profile PDFs.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// ── Logging ─────────────────────────────────────────────────────────────
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("service", serviceName))
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithContext(ctx, logger)

	m := metrics.New()

	// ── Store ────────────────────────────────────────────────────────────────
	var store candidate.Store
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		logger.Info("connecting to PostgreSQL")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, db.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MaxConnLifetime: cfg.DBMaxConnLifetime,
			ApplicationName: serviceName,
		})
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		pg := candidate.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return fmt.Errorf("postgres schema: %w", err)
		}
		store = pg
		logger.Info("PostgreSQL connected")
	default:
		store = candidate.NewMemoryStore()
		logger.Warn("using the in-memory store; data is lost on restart")
	}
	defer store.Close()

	// ── Redis ────────────────────────────────────────────────────────────────
	var pub events.Publisher = events.Nop{}
	if cfg.RedisURL != "" {
		logger.Info("connecting to Redis")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, db.RedisOptions{ClientName: serviceName, DialTimeout: 5 * time.Second})
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		pub = events.NewRedisPublisher(rdb)
		logger.Info("Redis connected")
	} else {
		logger.Info("REDIS_URL not set; events are not published")
	}
	defer func() { _ = pub.Close() }()

	// ── Service ──────────────────────────────────────────────────────────────
	renderer, err := render.New(render.Options{Author: serviceName})
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	svc := candidate.NewService(store, candidate.ServiceOptions{
		DefaultSort:         candidate.SortField(cfg.DefaultSort),
		StrictStatusUpdates: cfg.StrictStatusUpdates,
		Publisher:           pub,
		Renderer:            renderer,
		Recorder:            m,
	})

	if cfg.StoreDriver == config.DriverMemory && cfg.EnableSeed {
		n, err := svc.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("in-memory store seeded", zap.Int("count", n))
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	h := candidate.NewHandler(svc, candidate.HandlerOptions{
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		SeedEnabled:    cfg.EnableSeed,
	})
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           middleware.Chain(mux, middleware.Standard(logger, m, cfg.CORSAllowedOrigins)...),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// ── gRPC server ──────────────────────────────────────────────────────────
	var grpcSrv *grpc.Server
	if cfg.GRPCEnabled() {
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(grpcserver.UnaryInterceptor(logger, m)))
		grpcserver.Register(grpcSrv, grpcserver.NewServer(svc))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if grpcSrv != nil {
		g.Go(func() error {
			lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
			if err != nil {
				return fmt.Errorf("grpc listen: %w", err)
			}
			logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
			return grpcSrv.Serve(lis)
		})
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if grpcSrv != nil {
			stopped := make(chan struct{})
			go func() {
				grpcSrv.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
			case <-shutdownCtx.Done():
				grpcSrv.Stop()
			}
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": version,
	})
}
