package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dmm341/avocado-ledger/internal/ledger"
	"github.com/dmm341/avocado-ledger/pkg/logger"
)

const defaultSweepLimit = 500

type ownerLister interface {
	ListFarmerIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
	ListBuyerIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

type reconciler interface {
	ReconcileFarmer(ctx context.Context, id uuid.UUID) (*ledger.ReconcileResult, error)
	ReconcileBuyer(ctx context.Context, id uuid.UUID) (*ledger.ReconcileResult, error)
}

type ReconcileSweepJobParams struct {
	Logger *logger.Logger
	Owners ownerLister
	Ledger reconciler
	Limit  int
}

// NewReconcileSweepJob recomputes every farmer and buyer aggregate. Drift is
// repaired and recorded by the ledger itself; the job only tallies it.
func NewReconcileSweepJob(params ReconcileSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Owners == nil {
		return nil, fmt.Errorf("owner lister required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSweepLimit
	}
	return &reconcileSweepJob{
		logg:   params.Logger,
		owners: params.Owners,
		ledger: params.Ledger,
		limit:  limit,
	}, nil
}

type reconcileSweepJob struct {
	logg   *logger.Logger
	owners ownerLister
	ledger reconciler
	limit  int
}

func (j *reconcileSweepJob) Name() string { return "reconcile-sweep" }

type sweepTally struct {
	checked int
	drifted int
	failed  int
}

// Run keeps going past individual owner failures and returns them combined.
func (j *reconcileSweepJob) Run(ctx context.Context) error {
	var errs error
	runID := "sweep-" + uuid.NewString()
	ctx = ledger.WithCorrelationID(j.logg.WithField(ctx, "sweep_id", runID), runID)

	farmerTally, farmerErr := j.sweep(ctx, j.owners.ListFarmerIDs, j.ledger.ReconcileFarmer)
	errs = multierr.Append(errs, farmerErr)
	buyerTally, buyerErr := j.sweep(ctx, j.owners.ListBuyerIDs, j.ledger.ReconcileBuyer)
	errs = multierr.Append(errs, buyerErr)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"farmers_checked": farmerTally.checked,
		"farmers_drifted": farmerTally.drifted,
		"buyers_checked":  buyerTally.checked,
		"buyers_drifted":  buyerTally.drifted,
		"failures":        farmerTally.failed + buyerTally.failed,
	})
	if farmerTally.drifted+buyerTally.drifted > 0 {
		j.logg.Warn(logCtx, "reconcile sweep repaired drift")
	} else {
		j.logg.Info(logCtx, "reconcile sweep complete")
	}
	return errs
}

// sweep walks owners one page of j.limit ids at a time until a short page
// comes back. A listing error ends the walk for that owner kind.
func (j *reconcileSweepJob) sweep(
	ctx context.Context,
	list func(context.Context, uuid.UUID, int) ([]uuid.UUID, error),
	reconcile func(context.Context, uuid.UUID) (*ledger.ReconcileResult, error),
) (sweepTally, error) {
	var (
		tally sweepTally
		errs  error
		after uuid.UUID
	)
	for {
		ids, err := list(ctx, after, j.limit)
		if err != nil {
			return tally, multierr.Append(errs, fmt.Errorf("list owners after %s: %w", after, err))
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return tally, multierr.Append(errs, err)
			}
			res, err := reconcile(ctx, id)
			if err != nil {
				tally.failed++
				errs = multierr.Append(errs, fmt.Errorf("reconcile %s: %w", id, err))
				continue
			}
			tally.checked++
			if res.Drifted {
				tally.drifted++
			}
		}
		if len(ids) < j.limit {
			return tally, errs
		}
		after = ids[len(ids)-1]
	}
}
