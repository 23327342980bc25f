package grouprunner

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"
)

// Config holds the service configuration
type Config struct {
	DefaultTimeout   time.Duration `yaml:"default_timeout"`   // Applied to descriptors that carry no timeout of their own
	Strict           bool          `yaml:"strict"`            // Abort on collection errors instead of skipping malformed descriptors
	ShowProgress     bool          `yaml:"show_progress"`     // If enabled, periodic progress updates are logged during a run
	ProgressInterval time.Duration `yaml:"progress_interval"` // Interval between progress updates when ShowProgress is 'true'
	RunInterval      time.Duration `yaml:"run_interval"`      // Interval between runs in continuous mode
	RunOnce          bool          `yaml:"run_once"`          // Indicates if the service should stop after one run
	OpsServer        bool          `yaml:"ops_server"`        // Serve /healthz and /metrics while running continuously

	Log log.Logger `yaml:"-"`
}

// NewConfig creates a Config with defaults applied and validated.
func NewConfig(logger log.Logger) *Config {
	if logger == nil {
		logger = log.Root()
	}
	return &Config{
		ProgressInterval: 30 * time.Second,
		RunInterval:      time.Hour,
		RunOnce:          true,
		Strict:           true,
		Log:              logger,
	}
}

// LoadConfig reads a YAML config file over the defaults. Fields absent from
// the file keep their default values.
func LoadConfig(path string, logger log.Logger) (*Config, error) {
	cfg := NewConfig(logger)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("default_timeout cannot be negative: %v", c.DefaultTimeout)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("progress_interval cannot be negative: %v", c.ProgressInterval)
	}
	if !c.RunOnce && c.RunInterval <= 0 {
		return fmt.Errorf("run_interval must be positive in continuous mode: %v", c.RunInterval)
	}
	if c.Log == nil {
		c.Log = log.Root()
	}
	return nil
}
