// Package server 装配对外 HTTP 传输层。
package server

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/storycut/services-edit/internal/controllers"
	loader "github.com/storycut/services-edit/internal/infrastructure/config_loader"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	kmetrics "github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c loader.ServerConfig,
	tel *Telemetry,
	pool *pgxpool.Pool,
	drafts *controllers.DraftHandler,
	submissions *controllers.SubmissionHandler,
	notifications *controllers.NotificationHandler,
	logger log.Logger,
) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			kmetrics.Server(
				kmetrics.WithSeconds(tel.SecondsHistogram),
				kmetrics.WithRequests(tel.RequestCounter),
			),
			logging.Server(logger),
		),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}
	if c.Timeout > 0 {
		opts = append(opts, http.Timeout(time.Duration(c.Timeout)))
	}

	srv := http.NewServer(opts...)

	srv.Handle("/healthz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
	}))

	srv.Handle("/readyz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			stdhttp.Error(w, "database unavailable", stdhttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(stdhttp.StatusOK)
	}))

	srv.Handle("/metrics", promhttp.HandlerFor(tel.PrometheusRegistry, promhttp.HandlerOpts{}))

	registerRoutes(srv, drafts, submissions, notifications)
	return srv
}

func registerRoutes(
	srv *http.Server,
	drafts *controllers.DraftHandler,
	submissions *controllers.SubmissionHandler,
	notifications *controllers.NotificationHandler,
) {
	r := srv.Route("/v1")

	r.POST("/drafts", drafts.OpenDraft)
	r.GET("/drafts/{id}", drafts.GetDraft)
	r.PATCH("/drafts/{id}", drafts.UpdateDraft)
	r.DELETE("/drafts/{id}", drafts.CancelDraft)
	r.POST("/drafts/{id}/video", drafts.AttachVideo)
	r.POST("/drafts/{id}/mosaic-images", drafts.AddMosaicImage)
	r.DELETE("/drafts/{id}/mosaic-images/{index}", drafts.RemoveMosaicImage)
	r.POST("/drafts/{id}/submit", submissions.Submit)

	r.GET("/notifications", notifications.ListNotifications)
	r.POST("/notifications/{id}/read", notifications.MarkNotificationRead)
}
