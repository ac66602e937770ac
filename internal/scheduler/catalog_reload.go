package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/MrSnakeDoc/voicelist/internal/catalog"
	"github.com/MrSnakeDoc/voicelist/internal/logger"
)

// CatalogReloader keeps the served product catalog in sync with its file.
// Reloads run on a cron schedule and on manual triggers; they are executed
// one at a time by a single goroutine.
type CatalogReloader struct {
	file          string
	holder        *catalog.Holder
	logger        logger.Logger
	schedule      string
	cron          *cron.Cron
	scheduled     chan struct{}
	manualTrigger chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
	started       bool
	done          chan struct{}
}

// NewCatalogReloader creates a reloader. An empty schedule disables periodic
// reloads; manualTrigger may be nil.
func NewCatalogReloader(
	file string,
	holder *catalog.Holder,
	log logger.Logger,
	schedule string,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		file:          file,
		holder:        holder,
		logger:        log,
		schedule:      schedule,
		cron:          cron.New(),
		scheduled:     make(chan struct{}, 1),
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start loads the catalog once and begins listening for reloads. A failed
// initial load leaves the empty catalog in place; the service still starts.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	cr.holder.Swap(catalog.LoadOrEmpty(cr.file, cr.logger))

	if cr.schedule != "" {
		if _, err := cr.cron.AddFunc(cr.schedule, cr.enqueue); err != nil {
			return fmt.Errorf("invalid catalog reload schedule %q: %w", cr.schedule, err)
		}
		cr.cron.Start()
	}

	cr.started = true
	go cr.loop(ctx)
	return nil
}

// enqueue is called by cron; a reload already queued absorbs the tick.
func (cr *CatalogReloader) enqueue() {
	select {
	case cr.scheduled <- struct{}{}:
	default:
	}
}

func (cr *CatalogReloader) loop(ctx context.Context) {
	defer close(cr.done)
	for {
		select {
		case <-cr.scheduled:
			cr.reloadLogged(ctx, "scheduled")
		case <-cr.manualTrigger:
			cr.logger.Info("manual catalog reload triggered")
			cr.reloadLogged(ctx, "manual")
		case <-cr.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (cr *CatalogReloader) reloadLogged(ctx context.Context, reason string) {
	if err := cr.Reload(ctx); err != nil {
		cr.logger.Error("failed to reload catalog, keeping previous one",
			logger.String("reason", reason),
			logger.Int("products", cr.holder.Count()),
			logger.Error(err))
	}
}

// Stop stops the schedule and waits for an in-flight reload to finish.
func (cr *CatalogReloader) Stop() {
	if !cr.started {
		return
	}
	cr.stopOnce.Do(func() {
		<-cr.cron.Stop().Done()
		close(cr.stopCh)
	})
	<-cr.done
}

// Reload loads the catalog file and swaps it in. On error the previous
// catalog keeps being served.
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cr.file == "" {
		return fmt.Errorf("catalog file not configured")
	}

	c, err := catalog.Load(cr.file)
	if err != nil {
		return err
	}
	cr.holder.Swap(c)

	cr.logger.Info("product catalog loaded",
		logger.String("file", cr.file),
		logger.Int("products", c.Len()))
	return nil
}
