package cron

import (
	"context"
	"fmt"

	"github.com/kingsofalchemy/ordertracker-backend/internal/aggregator"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
)

// orderFetcher is the aggregator surface the job consumes.
type orderFetcher interface {
	FetchAll(ctx context.Context) aggregator.Result
}

// snapshotSaver persists the combined fetch for the API to serve.
type snapshotSaver interface {
	Save(ctx context.Context, result aggregator.Result) error
}

// SnapshotRefreshJob pulls fresh orders from every source and caches the
// combined result. Per-source failures ride along inside the snapshot;
// only a cache write failure fails the job.
type SnapshotRefreshJob struct {
	fetcher  orderFetcher
	snapshot snapshotSaver
	logg     *logger.Logger
}

// SnapshotRefreshParams configure the job.
type SnapshotRefreshParams struct {
	Fetcher  orderFetcher
	Snapshot snapshotSaver
	Logger   *logger.Logger
}

// NewSnapshotRefreshJob builds the job.
func NewSnapshotRefreshJob(params SnapshotRefreshParams) (*SnapshotRefreshJob, error) {
	if params.Fetcher == nil {
		return nil, fmt.Errorf("fetcher required")
	}
	if params.Snapshot == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &SnapshotRefreshJob{
		fetcher:  params.Fetcher,
		snapshot: params.Snapshot,
		logg:     params.Logger,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *SnapshotRefreshJob) Name() string {
	return "order_snapshot_refresh"
}

// Run fetches all sources and stores the combined snapshot.
func (j *SnapshotRefreshJob) Run(ctx context.Context) error {
	result := j.fetcher.FetchAll(ctx)

	fields := map[string]any{
		"orders":        len(result.Orders),
		"source_errors": len(result.Errors),
	}
	j.logg.Info(j.logg.WithFields(ctx, fields), "order snapshot refreshed")

	if err := j.snapshot.Save(ctx, result); err != nil {
		return fmt.Errorf("save order snapshot: %w", err)
	}
	return nil
}
