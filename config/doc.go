// Package config loads configuration for rxkit programs.
//
// It uses Viper to read a YAML/JSON/TOML config file, godotenv to load an
// optional .env file, and environment variables for overrides. Environment
// variables use the RX_ prefix with underscore-separated paths, e.g.
// RX_SCHEDULER_WORKERS overrides scheduler.workers.
//
// # Usage
//
//	var cfg DemoConfig
//	if err := config.LoadConfig("rxdemo", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
package config
