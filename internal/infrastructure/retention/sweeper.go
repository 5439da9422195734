package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"

	"agenthub/services/chat-api/internal/config"
	"agenthub/services/chat-api/internal/domain/conversation"
	"agenthub/services/chat-api/internal/domain/tenant"
	"agenthub/services/chat-api/internal/infrastructure/logger"
	"agenthub/services/chat-api/internal/infrastructure/metrics"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

const sweepTimeout = 10 * time.Minute

// Sweeper removes conversations that fell outside each tenant's retention
// window. Usage records stay untouched: the audit trail is append-only.
type Sweeper struct {
	ctab          *crontab.Crontab
	tenants       tenant.Repository
	conversations conversation.Repository
	cfg           *config.Config
}

func NewSweeper(tenants tenant.Repository, conversations conversation.Repository, cfg *config.Config) *Sweeper {
	return &Sweeper{
		ctab:          crontab.New(),
		tenants:       tenants,
		conversations: conversations,
		cfg:           cfg,
	}
}

// Run blocks until ctx is cancelled. The sweep executes once at startup and
// then daily at the configured hour.
func (s *Sweeper) Run(ctx context.Context) error {
	if !s.cfg.RetentionSweepEnabled {
		<-ctx.Done()
		return nil
	}

	s.sweepAll(ctx)

	cronExpr := fmt.Sprintf("0 %d * * *", s.cfg.RetentionSweepHour)
	if err := s.ctab.AddJob(cronExpr, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		s.sweepAll(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to schedule retention sweep")
	}

	<-ctx.Done()
	s.ctab.Shutdown()
	return nil
}

func (s *Sweeper) sweepAll(ctx context.Context) {
	log := logger.GetLogger()

	tenants, err := s.tenants.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("retention sweep: failed to list tenants")
		return
	}

	now := time.Now()
	var total int64
	for _, t := range tenants {
		removed, err := s.conversations.DeleteOlderThan(ctx, t.ID, t.RetentionCutoff(now))
		if err != nil {
			log.Error().Err(err).Str("tenant", t.PublicID).Msg("retention sweep failed for tenant")
			continue
		}
		if removed > 0 {
			log.Info().Str("tenant", t.PublicID).Int64("removed", removed).Msg("expired conversations removed")
			metrics.RetentionDeletedTotal.Add(float64(removed))
		}
		total += removed
	}

	if total > 0 {
		log.Info().Int64("removed", total).Msg("retention sweep finished")
	}
}
