package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	authhandler "custody/internal/auth/handler"
	authservice "custody/internal/auth/service"
	custodyhandler "custody/internal/custody/handler"
	custodymetrics "custody/internal/custody/metrics"
	"custody/internal/custody/models"
	"custody/internal/custody/service"
	jwttoken "custody/internal/jwt_token"
	"custody/internal/platform/config"
	"custody/internal/platform/httpserver"
	"custody/internal/platform/logger"
	"custody/internal/platform/metrics"
	"custody/internal/platform/tracing"
	id "custody/pkg/domain"
	"custody/pkg/platform/audit/publishers/compliance"
	"custody/pkg/platform/httputil"
	adminmw "custody/pkg/platform/middleware/admin"
	authmw "custody/pkg/platform/middleware/auth"
	"custody/pkg/platform/middleware/metadata"
	"custody/pkg/platform/middleware/request"
	"custody/pkg/platform/middleware/requesttime"
)

const (
	serviceName     = "custody"
	shutdownTimeout = 10 * time.Second
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	if cfg.UsesDevSigningKey() {
		log.Warn("using the development JWT signing key; set CUSTODY_JWT_SIGNING_KEY in production")
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, serviceName, version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	}()

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	publisher := compliance.New(infra.auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics()),
	)
	defer publisher.Close()

	custody := service.New(infra.txRunner,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(custodymetrics.New(prometheus.DefaultRegisterer)),
	)
	if err := initializeAdministrator(ctx, cfg, custody, log); err != nil {
		return err
	}

	auth := authservice.New(infra.trl,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(publisher),
	)
	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)

	r := newRouter(routerDeps{
		cfg:      cfg,
		infra:    infra,
		custody:  custody,
		auth:     auth,
		jwt:      jwtService,
		log:      log,
		registry: prometheus.DefaultRegisterer,
	})

	srv := httpserver.New(cfg.Addr, r, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting custody ledger", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info("http server stopped")
		return nil
	})
	infra.startBackground(gctx, g, cfg, log)

	return g.Wait()
}

type routerDeps struct {
	cfg      config.Server
	infra    *infra
	custody  *service.Service
	auth     *authservice.Service
	jwt      *jwttoken.JWTService
	log      *slog.Logger
	registry prometheus.Registerer
}

// newRouter mounts health and metrics endpoints publicly and every ledger
// route behind bearer authentication and rate limiting.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(d.log))
	r.Use(request.Logger(d.log))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(metrics.New(d.registry).LatencyMiddleware)

	r.Get("/healthz", d.infra.healthHandler)
	r.With(adminmw.RequireOpsToken(d.cfg.OpsToken, d.log)).Handle("/metrics", promhttp.Handler())

	limiter := d.infra.rateLimiter(d.cfg, d.log, d.registry)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(jwttoken.NewJWTServiceAdapter(d.jwt), d.infra.trl, d.log))
		if limiter != nil {
			r.Use(limiter.RateLimit)
		}
		custodyhandler.New(d.custody, d.log).Register(r)
		authhandler.New(d.auth, d.log).Register(r)
	})
	return r
}

// initializeAdministrator installs CUSTODY_ADMIN_ADDRESS on first boot. A
// persistent store that already has an administrator keeps it.
func initializeAdministrator(ctx context.Context, cfg config.Server, custody *service.Service, log *slog.Logger) error {
	if cfg.AdminAddress == "" {
		current, err := custody.Administrator(ctx)
		if err != nil {
			return err
		}
		if current.IsZero() {
			log.Warn("no administrator configured; actor registration is unavailable until CUSTODY_ADMIN_ADDRESS is set")
		}
		return nil
	}
	admin, err := id.ParseAddress(cfg.AdminAddress)
	if err != nil {
		return err
	}
	err = custody.Initialize(ctx, admin)
	if errors.Is(err, models.ErrAlreadyInitialized) {
		current, err := custody.Administrator(ctx)
		if err != nil {
			return err
		}
		if current != admin {
			log.Warn("configured administrator differs from the stored one; keeping the stored administrator",
				"configured", admin,
				"stored", current,
			)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("initialize administrator: %w", err)
	}
	log.Info("administrator initialized", "administrator", admin)
	return nil
}

type healthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends,omitempty"`
}

func (i *infra) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Backends: map[string]string{}}
	status := http.StatusOK
	for name, check := range i.healthChecks() {
		if err := check(ctx); err != nil {
			resp.Backends[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Backends[name] = "ok"
	}
	httputil.WriteJSON(w, status, resp)
}
