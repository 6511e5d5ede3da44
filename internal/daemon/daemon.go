package daemon

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"capestudio/internal/cape"
	"capestudio/internal/capestore"
	"capestudio/internal/config"
	"capestudio/internal/faults"
	"capestudio/internal/intercept"
	"capestudio/internal/logging"
)

// Daemon owns the interception service and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *capestore.Store
	capes    *cape.Set
	registry *intercept.Registry
	metrics  *intercept.Metrics
	engine   *intercept.Engine

	lockPath string
	lock     *flock.Flock

	mu       sync.Mutex
	proxy    *listener
	exporter *listener
	running  atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	ProxyAddr    string
	MetricsAddr  string
	Capes        int
	Registry     intercept.Stats
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *capestore.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and cape store")
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	capes := cape.NewSet(nil)
	registry := intercept.NewRegistry()
	metrics := intercept.NewMetrics()
	engine := intercept.NewEngine(intercept.Options{
		CatalogPageURL:   cfg.Proxy.CatalogPageURL,
		CatalogLookupURL: cfg.Proxy.CatalogLookupURL,
		AssetHost:        cfg.Proxy.AssetHost,
		AssetBaseURL:     cfg.Proxy.AssetBaseURL,
		CatalogPath:      cfg.Paths.CatalogPath,
	}, capes, registry, metrics, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "capestudio-proxy.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		capes:    capes,
		registry: registry,
		metrics:  metrics,
		engine:   engine,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, loads the cape set and opens the listeners.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another capestudio proxy instance is already running")
	}

	if err := d.start(ctx); err != nil {
		d.teardown()
		return err
	}

	d.running.Store(true)
	d.logger.Info("capestudio proxy started",
		logging.String("lock", d.lockPath),
		logging.String("proxy", d.proxy.addr()),
		logging.String("metrics", d.exporter.addr()),
		logging.Int("capes", d.capes.Len()),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

func (d *Daemon) start(ctx context.Context) error {
	if _, err := d.Reload(ctx); err != nil {
		return err
	}

	var ca *tls.Certificate
	if d.cfg.Proxy.CACert != "" {
		loaded, err := intercept.LoadCA(d.cfg.Proxy.CACert, d.cfg.Proxy.CAKey)
		if err != nil {
			return faults.Wrap(faults.ErrConfiguration, "daemon", "load ca", d.cfg.Proxy.CACert, err)
		}
		ca = loaded
	} else {
		logging.WarnWithContext(d.logger, "no ca configured, using the built-in goproxy root", "ca_default",
			logging.String(logging.FieldErrorHint, "run capestudio proxy ca and trust the printed certificate"),
			logging.String(logging.FieldImpact, "clients reject intercepted TLS until the root is trusted"),
		)
	}

	d.proxy = newListener("proxy", d.cfg.Proxy.Bind, intercept.NewServer(d.engine, ca, d.logger), d.logger)
	if err := d.proxy.start(); err != nil {
		return err
	}

	if bind := strings.TrimSpace(d.cfg.Proxy.MetricsBind); bind != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(d.metrics.Registry(), promhttp.HandlerOpts{}))
		d.exporter = newListener("metrics", bind, mux, d.logger)
		if err := d.exporter.start(); err != nil {
			return err
		}
	}
	return nil
}

// Reload replaces the served cape set with the current store contents.
func (d *Daemon) Reload(ctx context.Context) (int, error) {
	defs, err := d.store.List(ctx)
	if err != nil {
		return 0, faults.Wrap(faults.ErrTransientIO, "daemon", "load capes", "", err)
	}
	d.capes.Replace(defs)
	var built int
	for _, def := range defs {
		if def.ArchivePath != "" {
			built++
		}
	}
	d.logger.Info("cape set loaded",
		logging.Int("capes", len(defs)),
		logging.Int("built", built),
		logging.String(logging.FieldEventType, "capes_loaded"),
	)
	return len(defs), nil
}

// Stop closes the listeners, drops registry state and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	stats := d.registry.Stats()
	d.teardown()
	d.running.Store(false)
	d.logger.Info("capestudio proxy stopped",
		logging.Int("pending_dropped", stats.Pending),
		logging.Int("assets_dropped", stats.Outstanding),
		logging.Int("assets_redeemed", stats.Redeemed),
		logging.String(logging.FieldEventType, "daemon_stopped"),
	)
}

func (d *Daemon) teardown() {
	d.exporter.stop()
	d.exporter = nil
	d.proxy.stop()
	d.proxy = nil
	d.registry.Close()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String("lock", d.lockPath),
		)
	}
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Engine returns the interception engine.
func (d *Daemon) Engine() *intercept.Engine {
	return d.engine
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		Running:      d.running.Load(),
		ProxyAddr:    d.proxy.addr(),
		MetricsAddr:  d.exporter.addr(),
		Capes:        d.capes.Len(),
		Registry:     d.registry.Stats(),
		LockFilePath: d.lockPath,
	}
}
