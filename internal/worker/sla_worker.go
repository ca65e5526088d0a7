package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/josoro11/FOXITE-V2/internal/config"
	"github.com/josoro11/FOXITE-V2/internal/repository"
	"github.com/josoro11/FOXITE-V2/internal/service"
)

// SLAWorker periodically sweeps tickets whose due dates have passed and
// records the breaches. The sweep complements the on-read evaluation:
// together they guarantee a breach is flagged even for tickets nobody
// opens.
type SLAWorker struct {
	cron    *cron.Cron
	tickets repository.TicketRepository
	svc     *service.TicketService
	logger  *zap.Logger
	batch   int
}

// NewSLAWorker builds the worker. It does not start until Start is called.
func NewSLAWorker(cfg config.SLAConfig, tickets repository.TicketRepository, svc *service.TicketService, logger *zap.Logger) (*SLAWorker, error) {
	w := &SLAWorker{
		cron:    cron.New(),
		tickets: tickets,
		svc:     svc,
		logger:  logger,
		batch:   cfg.SweepBatchSize,
	}
	if w.batch <= 0 {
		w.batch = 200
	}
	spec := cfg.SweepSpec
	if spec == "" {
		spec = "@every 1m"
	}
	if _, err := w.cron.AddFunc(spec, w.sweep); err != nil {
		return nil, err
	}
	return w, nil
}

// Start launches the cron scheduler.
func (w *SLAWorker) Start() {
	w.cron.Start()
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (w *SLAWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *SLAWorker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	candidates, err := w.tickets.ListBreachCandidates(ctx, time.Now(), w.batch)
	if err != nil {
		w.logger.Error("sla sweep: listing breach candidates failed", zap.Error(err))
		return
	}
	if len(candidates) == 0 {
		return
	}

	flagged := 0
	for i := range candidates {
		ticket := &candidates[i]
		if err := w.svc.RefreshBreach(ctx, ticket); err != nil {
			w.logger.Error("sla sweep: recording breach failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
			continue
		}
		flagged++
	}
	w.logger.Info("sla sweep complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("flagged", flagged))
}
