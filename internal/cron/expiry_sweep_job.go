package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gemcircle/gemcircle-backend/internal/grouppurchases"
	"github.com/gemcircle/gemcircle-backend/pkg/enums"
	"github.com/gemcircle/gemcircle-backend/pkg/logger"
	"github.com/gemcircle/gemcircle-backend/pkg/metrics"
	"github.com/gemcircle/gemcircle-backend/pkg/outbox"
	"github.com/gemcircle/gemcircle-backend/pkg/outbox/payloads"
)

const defaultExpirySweepBatch = 200

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ExpirySweepJobParams configure the deadline sweep.
type ExpirySweepJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository grouppurchases.Repository
	Outbox     outboxPublisher
	Metrics    *metrics.GroupPurchaseMetrics
	BatchSize  int
}

// NewExpirySweepJob builds the job that expires open purchases whose
// deadline has passed. Reads normally trigger the same transition lazily;
// the sweep catches purchases nobody is looking at.
func NewExpirySweepJob(params ExpirySweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("group purchase repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultExpirySweepBatch
	}
	return &expirySweepJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type expirySweepJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      grouppurchases.Repository
	outbox    outboxPublisher
	metrics   *metrics.GroupPurchaseMetrics
	batchSize int
	now       func() time.Time
}

func (j *expirySweepJob) Name() string { return "group-purchase-expiry-sweep" }

func (j *expirySweepJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	expired := 0
	skipped := 0

	for {
		var due int
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			repo := j.repo.WithTx(tx)
			purchases, err := repo.FindOpenPastDeadline(ctx, cutoff, j.batchSize)
			if err != nil {
				return err
			}
			due = len(purchases)

			for i := range purchases {
				purchase := &purchases[i]
				ok, err := repo.UpdatePurchaseGuarded(ctx, purchase.ID, purchase.Version, map[string]any{
					"status":     enums.GroupPurchaseStatusExpired,
					"expired_at": cutoff,
				})
				if err != nil {
					return err
				}
				if !ok {
					// A concurrent writer moved the row; the next batch
					// re-reads it with a fresh version if still due.
					skipped++
					continue
				}

				event := outbox.DomainEvent{
					EventType:     enums.EventGroupPurchaseStatusChanged,
					AggregateType: enums.AggregateGroupPurchase,
					AggregateID:   purchase.ID,
					Version:       1,
					Data: payloads.GroupPurchaseStatusChangedEvent{
						PurchaseID: purchase.ID,
						OldStatus:  enums.GroupPurchaseStatusOpen,
						NewStatus:  enums.GroupPurchaseStatusExpired,
						ChangedAt:  cutoff,
					},
				}
				if err := j.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
					return err
				}
				j.metrics.IncTransition(enums.GroupPurchaseStatusExpired.String())
				expired++
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("expiry sweep: %w", err)
		}
		if due < j.batchSize {
			break
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_expired": expired,
		"rows_skipped": skipped,
	})
	j.logg.Info(logCtx, "expiry sweep complete")
	return nil
}
