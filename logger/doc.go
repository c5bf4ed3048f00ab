// Package logger provides structured logging for rxkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. The rx and scheduler
// packages log through component loggers obtained from the global logger.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("scheduler")
//	log.Info("pool started", logger.Fields("workers", 8))
package logger
