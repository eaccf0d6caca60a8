// Package logging provides structured logging for wordsense.
//
// The package wraps Zap with:
//   - A custom Trace level (-2, below Debug)
//   - Dual output (stdout and, optionally, OpenTelemetry logs)
//   - Automatic context fields (trace_id, span_id, request.id)
//   - Redaction of credential-bearing fields such as MongoDB URIs
//   - Level-aware sampling (errors are never sampled)
//
// Create a logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, "5f0c9a3e")
//	logger.Info(ctx, "prediction served", zap.Int("results", 3))
//
// Tests use TestLogger to assert on emitted entries:
//
//	tl := logging.NewTestLogger()
//	tl.AssertLogged(t, zapcore.InfoLevel, "prediction served")
package logging
