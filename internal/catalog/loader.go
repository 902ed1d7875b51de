package catalog

import (
	"context"
	"time"

	"github.com/vitaldent/clinic-site/pkg/logging"
)

// LoadObserver records catalog load outcomes.
type LoadObserver interface {
	ObserveCatalogLoad(source string, ok bool, count int)
}

// Loader wraps a Source with graceful degradation: a failing source yields an
// empty catalog instead of an error.
type Loader struct {
	source   Source
	name     string
	timeout  time.Duration
	logger   *logging.Logger
	observer LoadObserver
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithTimeout bounds each load.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithObserver attaches a metrics observer.
func WithObserver(o LoadObserver) LoaderOption {
	return func(l *Loader) {
		l.observer = o
	}
}

// NewLoader creates a loader over source; name labels logs and metrics.
func NewLoader(source Source, name string, logger *logging.Logger, opts ...LoaderOption) *Loader {
	if source == nil {
		panic("catalog: source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	l := &Loader{source: source, name: name, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the wrapped source.
func (l *Loader) Source() Source {
	return l.source
}

// Load returns the deduplicated treatment sequence, or an empty one when the
// source fails.
func (l *Loader) Load(ctx context.Context) []Treatment {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	treatments, err := l.source.Load(ctx)
	if err != nil {
		l.logger.Error("catalog load failed, serving empty catalog", "source", l.name, "error", err)
		l.observe(false, 0)
		return []Treatment{}
	}

	treatments, dropped := Dedupe(treatments)
	if dropped > 0 {
		l.logger.Warn("dropped duplicate treatment ids", "source", l.name, "dropped", dropped)
	}
	l.observe(true, len(treatments))
	return treatments
}

func (l *Loader) observe(ok bool, count int) {
	if l.observer != nil {
		l.observer.ObserveCatalogLoad(l.name, ok, count)
	}
}
