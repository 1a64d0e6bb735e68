package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AngelCh415/meta-dashboard-go/internal/config"
	"github.com/AngelCh415/meta-dashboard-go/internal/httpx"
	"github.com/AngelCh415/meta-dashboard-go/internal/ingest"
	"github.com/AngelCh415/meta-dashboard-go/internal/metrics"
	"github.com/AngelCh415/meta-dashboard-go/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	upstream := ingest.NewMetrics(reg)

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	asm := metrics.NewAssembler(cfg.Estimates)

	var svc *ingest.Service
	switch cfg.Source {
	case config.SourceWebhook:
		wh := ingest.NewWebhookClient(cl, cfg.WebhookURL, cfg.WebhookSecret, cfg.MaxRetries, logger, upstream)
		svc = ingest.NewWebhookService(wh, asm, logger)
	default:
		meta := ingest.NewMetaClient(cl, logger, upstream, ingest.MetaClientOptions{
			BaseURL:    cfg.GraphURL,
			Version:    cfg.APIVersion,
			MaxPages:   cfg.MaxPages,
			MaxRetries: cfg.MaxRetries,
		})
		orch := ingest.NewOrchestrator(meta, logger, cfg.DefaultTimezone, cfg.PageLimit)
		svc = ingest.NewGraphService(orch, asm, logger)
	}

	r := httpx.NewRouter(logger, svc, httpx.Options{
		CORSOrigins: cfg.CORSOrigins,
		Gatherer:    reg,
		HTTPMetrics: utils.NewHTTPMetrics(reg),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Error("listen", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.Info("starting server", slog.String("port", cfg.Port), slog.String("source", cfg.Source))
	if err := serve(ctx, srv, ln, logger); err != nil {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// serve runs srv on ln until ctx ends, then waits for in-flight requests.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, log *slog.Logger) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", slog.String("err", err.Error()))
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	return nil
}
