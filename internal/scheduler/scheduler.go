package scheduler

import (
	"context"
	"time"

	keydomain "github.com/smallbiznis/keyforge/internal/key/domain"
	obsmetrics "github.com/smallbiznis/keyforge/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	KeySvc  keydomain.Service
	Metrics *obsmetrics.RegistryMetrics
	Config  Config `optional:"true"`
}

// Scheduler periodically snapshots registry statistics into prometheus
// gauges so dashboards don't need to poll the stats endpoint.
type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	keySvc  keydomain.Service
	metrics *obsmetrics.RegistryMetrics
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:     p.Log.Named("scheduler"),
		cfg:     p.Config.withDefaults(),
		keySvc:  p.KeySvc,
		metrics: p.Metrics,
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	stats, err := s.keySvc.Stats(ctx)
	if err != nil {
		return err
	}

	s.metrics.SetTotals(stats.TotalKeys, stats.ActiveKeys, stats.ExpiredKeys, stats.TotalRevenue)
	for _, ts := range stats.KeyTypeStats {
		s.metrics.SetTypeCount(ts.KeyType, ts.Count)
	}

	s.log.Debug("registry gauges refreshed",
		zap.Int64("total", stats.TotalKeys),
		zap.Int64("active", stats.ActiveKeys),
		zap.Int64("expired", stats.ExpiredKeys),
	)
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	if err := s.RunOnce(ctx); err != nil {
		s.log.Warn("stats refresh failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Warn("stats refresh failed", zap.Error(err))
			}
		}
	}
}
