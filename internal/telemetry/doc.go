// Package telemetry provides OpenTelemetry instrumentation for wordsense.
//
// Traces and metrics are exported over OTLP (gRPC or HTTP/protobuf) when
// telemetry is enabled. Independently of OTLP, metrics can be exposed in
// Prometheus text format through the exporter bridge; Handler serves them
// on /metrics.
//
//	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(ctx)
//
//	meter := tel.Meter("wordsense.prediction")
//	counter, _ := meter.Int64Counter("wordsense.prediction.requests")
//	counter.Add(ctx, 1)
package telemetry
