package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/liftdash/internal/config"
	"github.com/2beens/liftdash/internal/dashboard"
	"github.com/2beens/liftdash/internal/fitapi"
	"github.com/2beens/liftdash/internal/healthbridge"
	"github.com/2beens/liftdash/internal/middleware"
	"github.com/2beens/liftdash/internal/stats"
	"github.com/2beens/liftdash/internal/telemetry/metrics"
	"github.com/2beens/liftdash/internal/telemetry/tracing"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config       *config.Config
	fitClient    *fitapi.Client
	aggregator   *dashboard.Aggregator
	healthBridge healthbridge.Bridge

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	FitAPIAuthToken         string
	VersionInfo             string
	HoneycombTracingEnabled bool
	LevelingCurve           stats.LevelingCurve
	HealthBridge            healthbridge.Bridge
}

func NewServer(params NewServerParams) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("liftdash", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // will be set to 1 when all is set and ran

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "liftdash-backend")
	if err != nil {
		return nil, err
	}

	fitApiTimeout := time.Duration(params.Config.FitAPITimeoutSeconds) * time.Second
	if fitApiTimeout <= 0 {
		fitApiTimeout = 30 * time.Second
	}
	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   fitApiTimeout,
	}

	fitClient := fitapi.NewClient(fitapi.ClientParams{
		BaseURL:                   params.Config.FitAPIBaseURL,
		AuthToken:                 params.FitAPIAuthToken,
		HTTPClient:                tracedHttpClient,
		CatalogCacheSizeMegabytes: params.Config.CatalogCacheSizeMegabytes,
	})

	trendRange, err := fitapi.ParseTimeRange(params.Config.TrendRange)
	if err != nil {
		log.Warnf("config trend range invalid, falling back to 12w: %s", err)
		trendRange = fitapi.TimeRange12W
	}

	healthBridge := params.HealthBridge
	if healthBridge == nil {
		healthBridge = healthbridge.NewUnavailableBridge()
	}
	var healthSyncer dashboard.HealthSyncer
	if params.Config.HealthSyncEnabled {
		healthSyncer = healthBridge
	}

	aggregator := dashboard.NewAggregator(dashboard.AggregatorParams{
		DataSource:     fitClient,
		HealthSyncer:   healthSyncer,
		MetricsManager: metricsManager,
		LevelingCurve:  params.LevelingCurve,
		TrendRange:     trendRange,
		RefreshTimeout: time.Duration(params.Config.RefreshTimeoutSeconds) * time.Second,
	})

	return &Server{
		versionInfo:    params.VersionInfo,
		config:         params.Config,
		fitClient:      fitClient,
		aggregator:     aggregator,
		healthBridge:   healthBridge,
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	dashboardHandler := dashboard.NewHandler(s.aggregator, s.healthBridge)
	dashboardHandler.SetupRoutes(r)

	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(s.versionInfo)); err != nil {
			log.Errorf("failed to write version response: %s", err)
		}
	}).Methods("GET").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	log.Debugln("closing dashboard aggregator ...")
	s.aggregator.Close()
	log.Debugln("dashboard aggregator closed")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
