package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	oldDir, oldFile := ConfigDir, ConfigFile
	t.Cleanup(func() {
		ConfigDir, ConfigFile = oldDir, oldFile
		config = nil
	})
	path := filepath.Join(t.TempDir(), "devtree", "config.json")
	SetConfigFile(path)
	config = nil
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := useTempConfig(t)

	if err := InitConfig(); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	cfg := GetConfig()
	if cfg.Backend != "mount" {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if len(cfg.SourceFolders) != 3 {
		t.Errorf("got %d default source folders", len(cfg.SourceFolders))
	}
	if time.Duration(cfg.WatchInterval) != 5*time.Second {
		t.Errorf("WatchInterval = %v", time.Duration(cfg.WatchInterval))
	}
}

func TestInitConfigReadsFile(t *testing.T) {
	path := useTempConfig(t)
	os.MkdirAll(filepath.Dir(path), 0755)
	data := `{"backend":"adb","adb_path":"/opt/adb","watch_interval":"30s","source_folders":["DCIM"]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if err := InitConfig(); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	cfg := GetConfig()
	if cfg.Backend != "adb" || cfg.AdbPath != "/opt/adb" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if time.Duration(cfg.WatchInterval) != 30*time.Second {
		t.Errorf("WatchInterval = %v", time.Duration(cfg.WatchInterval))
	}
	if cfg.LogLevel != "info" {
		t.Errorf("missing key should keep default, got LogLevel %q", cfg.LogLevel)
	}
}

func TestInitConfigRejectsBackend(t *testing.T) {
	path := useTempConfig(t)
	os.MkdirAll(filepath.Dir(path), 0755)
	os.WriteFile(path, []byte(`{"backend":"usb"}`), 0644)

	if err := InitConfig(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestInitConfigRecreatesCorrupt(t *testing.T) {
	path := useTempConfig(t)
	os.MkdirAll(filepath.Dir(path), 0755)
	os.WriteFile(path, []byte(`{not json`), 0644)

	if err := InitConfig(); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if GetConfig().Backend != "mount" {
		t.Error("corrupt config not replaced by defaults")
	}
}

func TestSourceFolders(t *testing.T) {
	useTempConfig(t)
	if err := InitConfig(); err != nil {
		t.Fatal(err)
	}

	if err := AddSourceFolder(`Internal storage\Download`); err != nil {
		t.Fatalf("AddSourceFolder: %v", err)
	}
	if err := AddSourceFolder(`internal storage\download`); err != nil {
		t.Fatalf("AddSourceFolder duplicate: %v", err)
	}
	if n := len(GetConfig().SourceFolders); n != 4 {
		t.Errorf("got %d folders, want 4", n)
	}
	if err := AddSourceFolder("  "); err == nil {
		t.Error("expected error for empty folder")
	}

	if err := RemoveSourceFolder(`Internal storage\Download`); err != nil {
		t.Fatalf("RemoveSourceFolder: %v", err)
	}
	if err := RemoveSourceFolder("nope"); err == nil {
		t.Error("expected error removing unknown folder")
	}

	// Persisted across reload.
	config = nil
	if err := InitConfig(); err != nil {
		t.Fatal(err)
	}
	if n := len(GetConfig().SourceFolders); n != 3 {
		t.Errorf("after reload got %d folders, want 3", n)
	}
}
