// Package telemetry builds the structured logger the CLI's run subcommand
// uses.
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger at the given level ("debug", "info", "warn",
// "error"). json selects the production JSON encoder; otherwise a
// console-friendly development encoder is used.
func New(level string, json bool) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if !json {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// Fields used consistently by every call site that logs machine state, so
// log lines stay greppable across every log line the run subcommand emits.
func PCField(pc int32) zap.Field           { return zap.Int32("pc", pc) }
func CycleField(n uint64) zap.Field        { return zap.Uint64("cycle", n) }
func StackDepthField(n int) zap.Field      { return zap.Int("stack_depth", n) }
