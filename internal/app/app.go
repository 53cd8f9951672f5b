// Package app wires configuration, storage, domain services, and the HTTP
// server into a running process.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/solarbrone/solar-store/internal/auth"
	"github.com/solarbrone/solar-store/internal/domain/blog"
	"github.com/solarbrone/solar-store/internal/domain/product"
	"github.com/solarbrone/solar-store/internal/domain/question"
	"github.com/solarbrone/solar-store/internal/domain/shipping"
	"github.com/solarbrone/solar-store/internal/handler"
	"github.com/solarbrone/solar-store/internal/paypal"
	"github.com/solarbrone/solar-store/internal/settings"
	"github.com/solarbrone/solar-store/internal/storage/blobdir"
	"github.com/solarbrone/solar-store/internal/storage/memstore"
	"github.com/solarbrone/solar-store/internal/storage/redisstore"
	"github.com/solarbrone/solar-store/pkg/health"
	"github.com/solarbrone/solar-store/pkg/httpmiddleware"
)

// stores bundles the per-collection storage interfaces the services consume.
type stores struct {
	products  product.Store
	articles  blog.Store
	questions question.Store
	settings  settings.Store
	sessions  auth.TokenStore
	pinger    health.Pinger
	close     func() error
}

// openStores connects to Redis when a URL is configured and falls back to
// the in-memory store otherwise, so the server runs without credentials in
// local development.
func openStores(lg *zap.Logger, cfg *Config) (*stores, error) {
	if cfg.RedisURL == "" {
		lg.Warn("No Redis URL configured, using in-memory store (data is not persisted)")
		ms := memstore.New()
		return &stores{
			products:  ms.Products(),
			articles:  ms.Articles(),
			questions: ms.Questions(),
			settings:  ms.Settings(),
			sessions:  ms.Sessions(),
			pinger:    ms,
			close:     func() error { return nil },
		}, nil
	}

	rs, err := redisstore.New(cfg.RedisURL)
	if err != nil {
		return nil, errors.Wrap(err, "connect redis")
	}
	return &stores{
		products:  rs.Products(),
		articles:  rs.Articles(),
		questions: rs.Questions(),
		settings:  rs.Settings(),
		sessions:  rs.Sessions(),
		pinger:    rs,
		close:     rs.Close,
	}, nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	st, err := openStores(lg, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("store", 5*time.Second, health.PingCheck(st.pinger))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	settingsSvc := settings.NewService(st.settings)
	shippingSvc := shipping.NewService(cfg.Shipping, settingsSvc)
	paymentClient := paypal.NewClient(cfg.PayPal)
	sessionSvc := auth.NewService(cfg.Auth, st.sessions)

	uploads, err := blobdir.New(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		return errors.Wrap(err, "init upload store")
	}

	h := handler.New(st.products, st.articles, st.questions,
		settingsSvc, shippingSvc, paymentClient, sessionSvc, uploads)

	// Mux: health endpoints + API routes on one server, API instrumented.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", otelhttp.NewHandler(h.Routes(), "solar-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
