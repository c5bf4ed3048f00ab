package scheduler

import (
	"fmt"
	"runtime"

	"github.com/kbukum/rxkit/validation"
)

// Config sizes the schedulers a process creates.
type Config struct {
	// Name of the computation pool.
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
	// Workers in the computation pool. Defaults to runtime.NumCPU().
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=1"`
	// IOMaxConcurrent caps concurrently running IO work.
	IOMaxConcurrent int `yaml:"io_max_concurrent" mapstructure:"io_max_concurrent" validate:"gte=1"`
	// SubscribeWorkers sizes the pool that runs producers on Subscribe.
	SubscribeWorkers int `yaml:"subscribe_workers" mapstructure:"subscribe_workers" validate:"gte=1"`
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ComputationName
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.IOMaxConcurrent == 0 {
		c.IOMaxConcurrent = DefaultIOMaxConcurrent
	}
	if c.SubscribeWorkers == 0 {
		c.SubscribeWorkers = max(32, 4*runtime.NumCPU())
	}
}

// Validate validates scheduler configuration.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	return nil
}
