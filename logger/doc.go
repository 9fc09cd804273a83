// Package logger provides structured logging for authgate using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers that carry request and principal identifiers
// pulled from the context.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Init(cfg.Logging, "authgate").WithComponent("auth")
//	log.Info("principal registered", logger.Fields("principal_id", id))
package logger
