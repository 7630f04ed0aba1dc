// Package logx is the structured logging layer of bhours: a small value-type
// Logger over zerolog, plus a Service that applies the logging config
// (console, JSON file, level) and can be reconfigured on hot reload.
package logx
