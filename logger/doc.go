// Package logger provides structured logging for faultkit using zerolog.
//
// It supports JSON and console output, component-scoped loggers, and a
// small named-logger registry so library packages can obtain a shared
// logger without threading it through every call.
//
// # Usage
//
//	log := logger.Get("resilience")
//	log.Warn("retrying after error", logger.Fields("attempt", 2, "delay", "1s"))
package logger
