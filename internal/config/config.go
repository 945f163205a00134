package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	viper "github.com/spf13/viper"
)

const (
	DefaultConnectTimeout = 3000 * time.Millisecond
	DefaultEmitThrottle   = 500 * time.Millisecond
	configName            = "store"
)

// StoreConfig is unmarshalled from viper, so every field can come from store.yml, the
// environment or a default.
type StoreConfig struct {
	StoreDir         string        `mapstructure:"store_path"`
	IPCDirectory     string        `mapstructure:"ipc_dir"`
	Worker           string        `mapstructure:"worker_path"`
	Apps             string        `mapstructure:"install_root"`
	Elevation        []string      `mapstructure:"elevation_command"`
	LogLevelName     string        `mapstructure:"log_level"`
	Connect          time.Duration `mapstructure:"connect_timeout"`
	ProgressThrottle time.Duration `mapstructure:"emit_throttle"`
}

func loadEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"store_path":        "HABITAT_STORE_PATH",
		"ipc_dir":           "HABITAT_STORE_IPC_DIR",
		"worker_path":       "HABITAT_STORE_WORKER",
		"install_root":      "HABITAT_STORE_INSTALL_ROOT",
		"elevation_command": "HABITAT_STORE_ELEVATION",
		"log_level":         "HABITAT_STORE_LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	v.SetDefault("store_path", filepath.Join(home, ".habitat-store"))
	v.SetDefault("ipc_dir", os.TempDir())
	v.SetDefault("connect_timeout", DefaultConnectTimeout)
	v.SetDefault("emit_throttle", DefaultEmitThrottle)
	v.SetDefault("log_level", "info")
	return nil
}

// NewStoreConfig reads env bindings and, if present, store.yml from the store path.
// A missing config file is not an error; everything has a default.
func NewStoreConfig() (*StoreConfig, error) {
	v := viper.New()
	if err := loadEnv(v); err != nil {
		return nil, err
	}

	v.AddConfigPath(v.GetString("store_path"))
	v.SetConfigType("yml")
	v.SetConfigName(configName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Debug().Msgf("No %s.yml found in %s, using defaults", configName, v.GetString("store_path"))
	}

	return unmarshal(v)
}

// NewStoreConfigFromFile is used by tests and by the --config flag.
func NewStoreConfigFromFile(path string) (*StoreConfig, error) {
	v := viper.New()
	if err := loadEnv(v); err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*StoreConfig, error) {
	var config StoreConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	log.Debug().Msgf("Loaded store config: %+v", config)
	return &config, nil
}

func (c *StoreConfig) StorePath() string {
	return c.StoreDir
}

func (c *StoreConfig) DBPath() string {
	return filepath.Join(c.StorePath(), "library.db")
}

func (c *StoreConfig) IPCDir() string {
	return c.IPCDirectory
}

// WorkerPath defaults to a store-worker binary next to the running executable.
func (c *StoreConfig) WorkerPath() string {
	if c.Worker != "" {
		return c.Worker
	}
	exe, err := os.Executable()
	if err != nil {
		return workerBinaryName
	}
	return filepath.Join(filepath.Dir(exe), workerBinaryName)
}

func (c *StoreConfig) InstallRoot() string {
	if c.Apps != "" {
		return c.Apps
	}
	return filepath.Join(c.StorePath(), "apps")
}

func (c *StoreConfig) ConnectTimeout() time.Duration {
	return c.Connect
}

func (c *StoreConfig) EmitThrottle() time.Duration {
	return c.ProgressThrottle
}

// ElevationCommand is a list in store.yml. From the environment it arrives as one
// string, which is split on spaces.
func (c *StoreConfig) ElevationCommand() []string {
	if len(c.Elevation) == 1 {
		return strings.Fields(c.Elevation[0])
	}
	return c.Elevation
}

func (c *StoreConfig) LogLevel() string {
	return c.LogLevelName
}
