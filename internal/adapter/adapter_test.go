package adapter

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("explicit missing config file should fail, got %+v", cfg)
	}

	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	cfg, err = loadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Covers.Variant != "M" || cfg.Covers.FetchTimeout != 15*time.Second {
		t.Errorf("cover defaults = %+v", cfg.Covers)
	}
	if cfg.Pool.DrainTimeout != 2*time.Second || cfg.OpenLibrary.Limit != 25 {
		t.Errorf("pool/openlibrary defaults = %+v %+v", cfg.Pool, cfg.OpenLibrary)
	}
	if cfg.CoverDir() != filepath.Join(cfg.Data.Dir, "covers") {
		t.Errorf("CoverDir() = %q", cfg.CoverDir())
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
data:
  dir: ` + dir + `
  db: items.db
covers:
  variant: l
  fetch_timeout: 3s
  thumbnail_capacity: 16
pool:
  workers: 3
openlibrary:
  cache_ttl: 1h
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHELF_DEV_SEED", "true")
	t.Setenv("SHELF_POOL_WORKERS", "5")

	cfg, err := loadConfig(viper.New(), path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Covers.Variant != "L" || cfg.Covers.FetchTimeout != 3*time.Second || cfg.Covers.ThumbnailCapacity != 16 {
		t.Errorf("covers = %+v", cfg.Covers)
	}
	if !cfg.DevSeed {
		t.Error("SHELF_DEV_SEED not applied")
	}
	if cfg.Pool.Workers != 5 {
		t.Errorf("workers = %d, want env override 5", cfg.Pool.Workers)
	}
	if cfg.OpenLibrary.CacheTTL != time.Hour {
		t.Errorf("cache_ttl = %v", cfg.OpenLibrary.CacheTTL)
	}
	if cfg.DBPath() != filepath.Join(dir, "items.db") {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
}

func TestLoadConfigRejectsBadVariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("covers:\n  variant: XL\n"), 0o644)
	if _, err := loadConfig(viper.New(), path); err == nil {
		t.Fatal("expected an error for variant XL")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelf", "config.yaml")

	cfg := DefaultConfig()
	cfg.Data.Dir = dir
	cfg.Covers.Variant = "S"
	cfg.OpenLibrary.Timeout = 4 * time.Second
	cfg.DevSeed = true
	if err := saveConfig(viper.New(), cfg, path); err != nil {
		t.Fatalf("saveConfig() error = %v", err)
	}

	got, err := loadConfig(viper.New(), path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if got.Covers.Variant != "S" || got.OpenLibrary.Timeout != 4*time.Second || !got.DevSeed || got.Data.Dir != dir {
		t.Errorf("round trip = %+v", got)
	}
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shelf.log")
	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "debug"})
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	logger.Debug("hello", "coverID", 7)
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[0] != '{' {
		t.Errorf("expected a JSON log line, got %q", data)
	}
	if parseLogLevel("nonsense") != parseLogLevel("INFO") {
		t.Error("unknown level should fall back to INFO")
	}

	logger, closer, err = SetupLogger(&LoggingConfig{File: " "})
	if err != nil || logger == nil {
		t.Fatalf("empty file: logger = %v, err = %v", logger, err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("closing a disabled logger: %v", err)
	}
}

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.lock")

	first, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock() error = %v", err)
	}
	if _, err := AcquireLock(path); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second AcquireLock() error = %v, want ErrAlreadyRunning", err)
	}
	if err := first.Release(); err != nil {
		t.Fatal(err)
	}
	again, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock() after release error = %v", err)
	}
	again.Release()
}

func TestLauncherUsesConfiguredViewer(t *testing.T) {
	img := filepath.Join(t.TempDir(), "1-M.jpg")
	os.WriteFile(img, []byte("x"), 0o644)

	var gotName string
	var gotArgs []string
	l := NewLauncher("feh --scale-down", NullLogger())
	l.start = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	if err := l.Open(img); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if gotName != "feh" || len(gotArgs) != 2 || gotArgs[0] != "--scale-down" || gotArgs[1] != img {
		t.Errorf("started %q %v", gotName, gotArgs)
	}

	if err := l.Open(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("Open() on a missing file should fail")
	}
}

func TestLauncherFallsBackToSystemDefault(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("fallback command is platform specific")
	}
	img := filepath.Join(t.TempDir(), "1-M.jpg")
	os.WriteFile(img, []byte("x"), 0o644)

	var started []string
	l := NewLauncher("", NullLogger())
	l.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	l.start = func(name string, args ...string) error {
		started = append(started, name)
		return nil
	}

	if err := l.Open(img); err != nil {
		t.Fatal(err)
	}
	if len(started) != 1 || started[0] != "xdg-open" {
		t.Errorf("started %v, want xdg-open", started)
	}
}
