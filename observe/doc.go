// Package observe provides observability for resilient executions.
//
// It wires an executor from the resilience package into OpenTelemetry
// tracing and metrics and into zap-backed structured logging:
//
//	obs, err := observe.NewObserver(ctx, cfg)
//	rec, err := observe.RecorderFromObserver(obs)
//	ex := resilience.NewExecutor(
//		resilience.WithRecorder(rec),
//		resilience.WithLogger(observe.NewFailureLogger(obs.Logger())),
//	)
//
// Every invocation produces one span named trylite.exec.<operation>, covering
// the first attempt through the terminal outcome, and updates the
// trylite.exec.* and trylite.attempt.failures instruments. Failed attempts are
// added as events to the caller's span when one is active.
//
// Log fields whose keys appear in RedactedFields are replaced before encoding.
package observe
