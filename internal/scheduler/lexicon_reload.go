package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/productbazar/bazar/internal/logger"
	"github.com/productbazar/bazar/internal/search"
	"github.com/productbazar/bazar/internal/sources/lexicon"
)

// LexiconReloader handles periodic reloading of the search lexicon file and
// swaps it into the planner.
type LexiconReloader struct {
	loader        *lexicon.Loader
	planner       *search.Planner
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewLexiconReloader creates a new lexicon reloader
func NewLexiconReloader(
	lexiconFile string,
	planner *search.Planner,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *LexiconReloader {
	return &LexiconReloader{
		loader:        lexicon.NewLoader(lexiconFile),
		planner:       planner,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process
func (lr *LexiconReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := lr.Reload(ctx); err != nil {
		return fmt.Errorf("initial lexicon load failed: %w", err)
	}

	ticker := time.NewTicker(lr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := lr.Reload(ctx); err != nil {
					lr.logger.Error("failed to reload lexicon",
						logger.Error(err))
				}
			case <-lr.manualTrigger:
				lr.logger.Info("manual lexicon reload triggered")
				if err := lr.Reload(ctx); err != nil {
					lr.logger.Error("failed to reload lexicon",
						logger.Error(err))
				}
			case <-lr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (lr *LexiconReloader) Stop() {
	close(lr.stopCh)
}

// Reload loads the lexicon file and swaps it into the planner. A broken file
// keeps the previous lexicon in place.
func (lr *LexiconReloader) Reload(_ context.Context) error {
	lex, err := lr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}

	lr.planner.Swap(lex)
	lr.logger.Info("lexicon loaded",
		logger.Int("patterns", lex.PatternCount()),
		logger.Int("expansions", lex.ExpansionCount()))
	return nil
}
