package config

// #region imports
import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// #endregion

// #region runtime

// Runtime holds environment-level settings: where the reasoning backend
// lives and where results go. Loaded through viper (flags, env, optional
// .deliberate.yaml); the experiment definition file is separate.
type Runtime struct {
	BackendURL     string        `mapstructure:"backend_url"`
	APIKey         string        `mapstructure:"api_key"`
	DBPath         string        `mapstructure:"db_path"`
	RecordPath     string        `mapstructure:"record_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Seed           int64         `mapstructure:"seed"`
	Verbose        bool          `mapstructure:"verbose"`
}

// LoadRuntime reads the runtime config from viper and applies defaults.
func LoadRuntime() (*Runtime, error) {
	cfg := &Runtime{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal runtime config: %w", err)
	}
	applyRuntimeDefaults(cfg)
	return cfg, nil
}

func applyRuntimeDefaults(cfg *Runtime) {
	if cfg.BackendURL == "" {
		cfg.BackendURL = "http://localhost:11434"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "deliberate.db"
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
}

// #endregion
