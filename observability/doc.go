// Package observability provides OpenTelemetry tracing and metrics for the
// authentication service.
//
// Export is opt-in. Without it the global no-op providers stay installed and
// every instrument is free to call:
//
//	c := observability.NewComponent(cfg, info, log)
//	_ = c.Start(ctx)
//	defer c.Stop(ctx)
//
//	metrics, err := observability.NewAuthMetrics(observability.Meter("authgate"))
//	metrics.RecordLogin(ctx, observability.OutcomeSuccess)
//
//	ctx, op := observability.StartOperation(ctx, observability.SpanAuthLogin)
//	defer op.End(outcome, err)
package observability
