package daemon_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"capestudio/internal/cape"
	"capestudio/internal/capestore"
	"capestudio/internal/config"
	"capestudio/internal/daemon"
	"capestudio/internal/logging"
	"capestudio/internal/testsupport"
)

func newDaemon(t *testing.T, cfg *config.Config) (*daemon.Daemon, *capestore.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d, store
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Proxy.MetricsBind = "127.0.0.1:0"
	d, store := newDaemon(t, cfg)

	ctx := context.Background()
	if err := store.Add(ctx, cape.New("tester")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.Capes != 1 {
		t.Fatalf("expected 1 cape loaded, got %d", status.Capes)
	}
	if status.ProxyAddr == "" || status.MetricsAddr == "" {
		t.Fatalf("expected bound listeners, got %+v", status)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	resp, err := http.Get("http://" + status.MetricsAddr + "/metrics")
	if err != nil {
		t.Fatalf("scrape metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "capestudio_intercept_archive_bytes_total") {
		t.Fatalf("expected interception metrics, got %q", body)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
}

func TestDaemonStartFailureReleasesListeners(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Proxy.MetricsBind = busy.Addr().String()
	d, _ := newDaemon(t, cfg)

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		if err := d.Start(ctx); err == nil {
			t.Fatalf("attempt %d: expected start to fail on a taken metrics bind", i)
		}
		status := d.Status()
		if status.Running || status.ProxyAddr != "" || status.MetricsAddr != "" {
			t.Fatalf("attempt %d: failed start left state behind: %+v", i, status)
		}
	}

	cfg.Proxy.MetricsBind = "127.0.0.1:0"
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start after freeing the bind: %v", err)
	}
	d.Stop()
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, _ := newDaemon(t, cfg)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}

	second, err := daemon.New(cfg, testsupport.MustOpenStore(t, cfg), logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected lock contention")
	}
}

func TestDaemonStopDropsRegistry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	registry := d.Engine().Registry()
	registry.AddPending("token", "A")
	registry.Mint("A")

	d.Stop()
	if stats := registry.Stats(); stats.Pending != 0 || stats.Outstanding != 0 {
		t.Fatalf("expected empty registry after stop, got %+v", stats)
	}
}

func TestDaemonReload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, store := newDaemon(t, cfg)
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if d.Status().Capes != 0 {
		t.Fatal("expected empty cape set")
	}
	for i := 0; i < 2; i++ {
		if err := store.Add(ctx, cape.New("tester")); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	n, err := d.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if n != 2 || d.Status().Capes != 2 {
		t.Fatalf("expected 2 capes after reload, got %d", n)
	}
}

func TestDaemonServesCatalogThroughProxy(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "real page")
	}))
	defer origin.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Proxy.CatalogPageURL = origin.URL + "/page"
	if err := os.WriteFile(cfg.Paths.CatalogPath, []byte(`{"result":{}}`), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	d, _ := newDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	proxyURL, _ := url.Parse("http://" + d.Status().ProxyAddr)
	client := &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)}}

	cases := []struct {
		path string
		want string
	}{
		{path: "/page", want: `{"result":{}}`},
		{path: "/elsewhere", want: "real page"},
	}
	for _, tc := range cases {
		resp, err := client.Get(origin.URL + tc.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tc.path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if string(body) != tc.want {
			t.Fatalf("GET %s = %q, want %q", tc.path, body, tc.want)
		}
	}
}

func TestNewRequiresStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemon.New(cfg, nil, logging.NewNop()); err == nil {
		t.Fatal("expected error without store")
	}
}
