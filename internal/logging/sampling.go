package logging

import (
	"go.uber.org/zap/zapcore"
)

// newSampledCore samples Warn and below per cfg. Error and above are never
// sampled.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}

	failures := rangeCore{Core: core, accept: func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel }}
	rest := rangeCore{Core: core, accept: func(l zapcore.Level) bool { return l < zapcore.ErrorLevel }}

	return zapcore.NewTee(
		failures,
		zapcore.NewSamplerWithOptions(rest, cfg.Tick.Duration(), cfg.Initial, cfg.Thereafter),
	)
}

// rangeCore passes through only the levels accept admits.
type rangeCore struct {
	zapcore.Core
	accept func(zapcore.Level) bool
}

func (c rangeCore) Enabled(lvl zapcore.Level) bool {
	return c.accept(lvl) && c.Core.Enabled(lvl)
}

func (c rangeCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.accept(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c rangeCore) With(fields []zapcore.Field) zapcore.Core {
	return rangeCore{Core: c.Core.With(fields), accept: c.accept}
}
