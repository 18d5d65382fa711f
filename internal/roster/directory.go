package roster

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"scan-stats-service/pkg/metrics"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Directory holds the current roster snapshot and swaps it on reload.
type Directory struct {
	path    string
	current atomic.Pointer[Snapshot]
	log     *zap.Logger
	metrics *metrics.Manager
}

type Option func(*Directory)

func WithLogger(l *zap.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.log = l
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(d *Directory) {
		d.metrics = m
	}
}

// Load reads the roster at path. The first load must succeed.
func Load(path string, opts ...Option) (*Directory, error) {
	d := &Directory{path: path, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) Snapshot() *Snapshot {
	return d.current.Load()
}

// Reload replaces the snapshot. On failure the previous one stays active.
func (d *Directory) Reload() error {
	if d.path == "" {
		return fmt.Errorf("%w: no file configured", ErrInvalidFile)
	}
	snap, err := readFile(d.path)
	if err != nil {
		d.metrics.RecordRosterReload(metrics.OutcomeFailure)
		d.log.Error("roster reload failed", zap.String("path", d.path), zap.Error(err))
		return err
	}
	d.current.Store(snap)
	d.metrics.RecordRosterReload(metrics.OutcomeSuccess)
	d.log.Info("roster loaded", zap.String("path", d.path), zap.Int("users", snap.Len()))
	return nil
}

// Watch reloads the roster whenever its file changes, until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
func (d *Directory) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("roster watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(d.path)); err != nil {
		w.Close()
		return fmt.Errorf("roster watcher: %w", err)
	}

	go func() {
		defer w.Close()
		target := filepath.Clean(d.path)

		// editors emit several events per save
		debounce := time.NewTimer(time.Hour)
		debounce.Stop()
		defer debounce.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					debounce.Reset(200 * time.Millisecond)
				}
			case <-debounce.C:
				_ = d.Reload()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				d.log.Warn("roster watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
