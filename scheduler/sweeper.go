// Package scheduler provides the scheduled maintenance jobs for the
// interactions API. It refreshes the drug-code cache daily against the
// vocabulary service and monitors cache health hourly.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/medsafe/interactions-api/interfaces"
	"github.com/medsafe/interactions-api/logging"
	"github.com/medsafe/interactions-api/metrics"
	"github.com/medsafe/interactions-api/rxnav"
)

// Compile-time check to ensure CacheSweeper implements Sweeper
var _ interfaces.Sweeper = (*CacheSweeper)(nil)

const sweepTimeout = 10 * time.Minute

// CacheSweeper re-resolves every cached drug code against the
// vocabulary once a day so stale or retired codes age out.
type CacheSweeper struct {
	codeStore  interfaces.CodeStore
	vocabulary interfaces.Vocabulary
	scheduler  *gocron.Scheduler
	done       chan struct{}
	stopOnce   sync.Once
}

// NewCacheSweeper creates a new sweeper with injected dependencies
func NewCacheSweeper(codeStore interfaces.CodeStore, vocabulary interfaces.Vocabulary) *CacheSweeper {
	return &CacheSweeper{
		codeStore:  codeStore,
		vocabulary: vocabulary,
		scheduler:  gocron.NewScheduler(time.Local),
		done:       make(chan struct{}),
	}
}

// Start schedules the daily sweep and the hourly health monitoring
func (s *CacheSweeper) Start() error {
	_, err := s.scheduler.Every(1).Days().At("06:00").Do(func() {
		if err := s.Sweep(); err != nil {
			logging.Error("Failed to sweep code cache", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule cache sweep", "error", err)
		return fmt.Errorf("failed to schedule cache sweep: %w", err)
	}

	s.scheduler.StartAsync()

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler and the health monitoring goroutine
func (s *CacheSweeper) Stop() {
	s.scheduler.Stop()
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// Sweep re-resolves all cached codes and atomically replaces the cache
// contents. Names the vocabulary no longer knows are dropped, and a
// vocabulary outage aborts the sweep leaving the cache untouched.
func (s *CacheSweeper) Sweep() error {
	// Prevent concurrent sweeps
	if !s.codeStore.BeginSweep() {
		logging.Info("Sweep already in progress, skipping...")
		return nil
	}
	defer s.codeStore.EndSweep()

	logging.Info("Starting code cache sweep", "entries", s.codeStore.Size())
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	names := s.codeStore.Names()
	fresh := make(map[string]string, len(names))
	dropped := 0

	for _, name := range names {
		code, err := s.vocabulary.FindRxCUI(ctx, name)
		if err != nil {
			if errors.Is(err, rxnav.ErrNotFound) {
				dropped++
				continue
			}
			logging.Error("Vocabulary unavailable during sweep, aborting", "error", err)
			return fmt.Errorf("sweep aborted: %w", err)
		}
		fresh[name] = code
	}

	s.codeStore.ReplaceCodes(fresh)
	metrics.CodeCacheEntries.Set(float64(len(fresh)))

	elapsed := time.Since(start)
	logging.Info("Code cache sweep completed",
		"duration", elapsed.String(),
		"kept", len(fresh),
		"dropped", dropped,
	)

	return nil
}

// startHealthMonitoring watches the sweep freshness
func (s *CacheSweeper) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				metrics.CodeCacheEntries.Set(float64(s.codeStore.Size()))

				lastSwept := s.codeStore.GetLastSwept()
				if !lastSwept.IsZero() && time.Since(lastSwept) > 25*time.Hour {
					logging.Warn("Code cache hasn't been swept in over 25 hours")
				}
			}
		}
	}()
}
