package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"projecthub/internal/logger"
	"projecthub/internal/metrics"
)

const (
	defaultSchedule    = "@daily"
	defaultGracePeriod = time.Hour
)

// OrphanSweeper deletes project-scoped rows whose project is gone.
type OrphanSweeper interface {
	Tables() []string
	Sweep(ctx context.Context, table string) (int64, error)
}

// UploadIndex lists the files that have an upload record.
type UploadIndex interface {
	ListFilenames(ctx context.Context) ([]string, error)
}

// FileStore is the disk side of uploads.
type FileStore interface {
	List() ([]string, error)
	ModTime(filename string) (time.Time, error)
	Remove(filename string) error
}

// Stats reports what a single run removed.
type Stats struct {
	Rows  map[string]int64
	Files int
}

// Cleaner periodically repairs state left behind by interrupted cascades:
// rows pointing at deleted projects and files on disk nobody recorded.
type Cleaner struct {
	orphans  OrphanSweeper
	uploads  UploadIndex
	files    FileStore
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	schedule string
	grace    time.Duration
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used to age unrecorded files.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification of the sweep.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithGracePeriod sets how old an unrecorded file must be before it is removed.
// Uploads in flight are written to disk before their record commits.
func WithGracePeriod(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.grace = d
		}
	}
}

// NewCleaner constructs a Cleaner. A nil uploads or files dependency skips the
// disk sweep.
func NewCleaner(orphans OrphanSweeper, uploads UploadIndex, files FileStore, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		orphans:  orphans,
		uploads:  uploads,
		files:    files,
		now:      time.Now,
		schedule: defaultSchedule,
		grace:    defaultGracePeriod,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the sweep with the scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.orphans == nil && (c.uploads == nil || c.files == nil) {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		stats, err := c.RunOnce(context.Background())
		if err != nil {
			c.log.Warn("maintenance run failed", zap.Error(err))
		}
		c.log.Info("maintenance run finished",
			zap.Any("rows", stats.Rows),
			zap.Int("files", stats.Files),
		)
	}); err != nil {
		return fmt.Errorf("schedule maintenance: %w", err)
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce sweeps every project-scoped table and then the upload directory.
// A failing step does not stop the others; all errors are returned together.
func (c *Cleaner) RunOnce(ctx context.Context) (Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	stats := Stats{Rows: map[string]int64{}}
	var errs error

	if c.orphans != nil {
		for _, table := range c.orphans.Tables() {
			removed, err := c.orphans.Sweep(ctx, table)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("sweep %s: %w", table, err))
				continue
			}
			stats.Rows[table] = removed
			if removed > 0 {
				metrics.MaintenanceRemoved.WithLabelValues(table).Add(float64(removed))
			}
		}
	}

	if c.uploads != nil && c.files != nil {
		removed, err := c.sweepFiles(ctx)
		stats.Files = removed
		errs = multierr.Append(errs, err)
		if removed > 0 {
			metrics.MaintenanceRemoved.WithLabelValues("files").Add(float64(removed))
		}
	}

	return stats, errs
}

func (c *Cleaner) sweepFiles(ctx context.Context) (int, error) {
	recorded, err := c.uploads.ListFilenames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list upload records: %w", err)
	}
	known := make(map[string]struct{}, len(recorded))
	for _, name := range recorded {
		known[name] = struct{}{}
	}

	onDisk, err := c.files.List()
	if err != nil {
		return 0, fmt.Errorf("list upload dir: %w", err)
	}

	cutoff := c.now().Add(-c.grace)
	removed := 0
	var errs error
	for _, name := range onDisk {
		if _, ok := known[name]; ok {
			continue
		}
		modified, err := c.files.ModTime(name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("stat %s: %w", name, err))
			continue
		}
		if modified.After(cutoff) {
			continue
		}
		if err := c.files.Remove(name); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", name, err))
			continue
		}
		c.log.Debug("removed unrecorded file", zap.String("filename", name))
		removed++
	}
	return removed, errs
}
