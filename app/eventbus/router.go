package eventbus

import (
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// NewRouter builds the message router every module registers its handlers
// on. Router metrics are added when a registry is given.
func NewRouter(logger *slog.Logger, registry *prometheus.Registry) (*message.Router, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 10 * time.Second,
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	if registry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(registry, "guessdle", "")
		builder.AddPrometheusRouterMetrics(router)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      2,
			InitialInterval: 100 * time.Millisecond,
			Multiplier:      2,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)
	return router, nil
}
