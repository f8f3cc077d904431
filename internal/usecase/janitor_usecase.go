package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/recipe-service/internal/repository"
	"github.com/user/recipe-service/pkg/metrics"
)

// TmpJanitor periodically removes expired files from the temporary files
// directory.
type TmpJanitor struct {
	store    repository.ImageStore
	maxAge   time.Duration
	interval time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewTmpJanitor(store repository.ImageStore, maxAge, interval time.Duration, logger *zap.Logger, m *metrics.Metrics) *TmpJanitor {
	return &TmpJanitor{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
		metrics:  m,
		stopChan: make(chan struct{}),
	}
}

// Start cleans once right away and then on every interval until Stop.
// A non-positive interval disables the janitor.
func (j *TmpJanitor) Start() {
	if j.interval <= 0 {
		j.logger.Warn("Temporary file cleanup disabled", zap.Duration("interval", j.interval))
		return
	}
	j.wg.Add(1)
	go j.run()
}

// Stop waits for a running cleanup to finish.
func (j *TmpJanitor) Stop() {
	close(j.stopChan)
	j.wg.Wait()
}

func (j *TmpJanitor) run() {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.CleanOnce(context.Background())
		select {
		case <-ticker.C:
		case <-j.stopChan:
			return
		}
	}
}

// CleanOnce removes the files older than the maximum age and returns how
// many were removed.
func (j *TmpJanitor) CleanOnce(ctx context.Context) int {
	removed, err := j.store.CleanOlderThan(ctx, j.maxAge)
	if err != nil {
		j.logger.Error("Failed to clean temporary files", zap.Error(err))
	}
	if len(removed) > 0 {
		j.metrics.AddTmpFilesRemoved(len(removed))
		j.logger.Info("Removed expired temporary files", zap.Int("count", len(removed)))
	}
	return len(removed)
}
