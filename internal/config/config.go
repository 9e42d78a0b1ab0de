package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gajzzs/devtree/internal/device"
)

type Config struct {
	Backend       string   `json:"backend"`
	AdbPath       string   `json:"adb_path"`
	AdbRoot       string   `json:"adb_root"`
	SourceFolders []string `json:"source_folders"`
	LastDevice    string   `json:"last_device,omitempty"`
	LogLevel      string   `json:"log_level"`
	LogFormat     string   `json:"log_format"`
	SnapshotDir   string   `json:"snapshot_dir"`
	WatchInterval Duration `json:"watch_interval"`
	TimeoutList   Duration `json:"timeout_list"`
}

// Duration marshals as a Go duration string such as "5s".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

var (
	ConfigDir  = defaultConfigDir()
	ConfigFile = filepath.Join(ConfigDir, "config.json")
	config     *Config
)

func defaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "devtree")
	}
	return ".devtree"
}

// SetConfigFile points the package at a different config file.
func SetConfigFile(path string) {
	ConfigFile = path
	ConfigDir = filepath.Dir(path)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backend: device.BackendMount,
		AdbPath: "adb",
		AdbRoot: "/storage/emulated/0",
		SourceFolders: []string{
			`This PC\XT1068\Internal storage\WhatsApp\Media\WhatsApp Images`,
			`This PC\XT1068\Internal storage\WhatsApp\Media\WhatsApp Video`,
			`This PC\XT1068\Internal storage\DCIM\Camera`,
		},
		LogLevel:      "info",
		LogFormat:     "console",
		SnapshotDir:   filepath.Join(ConfigDir, "snapshots"),
		WatchInterval: Duration(5 * time.Second),
		TimeoutList:   Duration(2 * time.Minute),
	}
}

func InitConfig() error {
	if err := os.MkdirAll(ConfigDir, 0755); err != nil {
		return err
	}

	config = Default()

	if _, err := os.Stat(ConfigFile); err == nil {
		data, err := os.ReadFile(ConfigFile)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, config); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: config file %s corrupted, recreating it\n", ConfigFile)
			config = Default()
			return SaveConfig()
		}
		return validate(config)
	}

	return SaveConfig()
}

func validate(cfg *Config) error {
	switch cfg.Backend {
	case device.BackendMount, device.BackendADB:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", cfg.Backend, device.BackendMount, device.BackendADB)
	}
	if cfg.WatchInterval <= 0 {
		return fmt.Errorf("watch_interval must be positive")
	}
	return nil
}

func GetConfig() *Config {
	if config == nil {
		config = Default()
	}
	return config
}

func SaveConfig() error {
	data, err := json.MarshalIndent(GetConfig(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(ConfigDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(ConfigFile, data, 0644)
}

// AddSourceFolder records a folder of interest. Duplicates are ignored.
func AddSourceFolder(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("empty source folder")
	}
	cfg := GetConfig()
	for _, existing := range cfg.SourceFolders {
		if strings.EqualFold(existing, path) {
			fmt.Printf("'%s' is already a source folder\n", path)
			return nil
		}
	}
	cfg.SourceFolders = append(cfg.SourceFolders, path)
	fmt.Printf("Added source folder '%s'\n", path)
	return SaveConfig()
}

func RemoveSourceFolder(path string) error {
	cfg := GetConfig()
	before := len(cfg.SourceFolders)
	cfg.SourceFolders = removeFromSlice(cfg.SourceFolders, path)
	if len(cfg.SourceFolders) == before {
		return fmt.Errorf("source folder '%s' not configured", path)
	}
	return SaveConfig()
}

func removeFromSlice(slice []string, item string) []string {
	for i, v := range slice {
		if strings.EqualFold(v, item) {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
