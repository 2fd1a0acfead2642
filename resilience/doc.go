// Package resilience runs fallible operations and resolves their failures
// into structured errors, so call sites do not hand-roll retry loops or
// error-to-message mapping.
//
// # Entry points
//
// Four generic functions share one Executor:
//
//   - Execute: a single attempt; failures become an *OperationError with the
//     caller's message.
//
//   - ExecuteWithRetry: attempts until a RetryPolicy stops granting retries,
//     waiting RetryDelay(attempt) between attempts.
//
//   - ExecuteClassified / ExecuteWithKinds: a single attempt; the failure is
//     mapped to a message by the first matching Classifier entry, or
//     DefaultMessage when nothing matches.
//
//   - ExecuteWithFallback: a single attempt; a failure accepted by the
//     matcher returns the fallback value instead of an error.
//
// # Usage
//
//	ex := resilience.NewExecutor(
//	    resilience.WithLogger(observe.NewFailureLogger(logger)),
//	)
//
//	policy := resilience.NewBackoffPolicy(3, resilience.WithBaseUnit(100*time.Millisecond))
//	user, err := resilience.ExecuteWithRetry(ctx, ex, func(ctx context.Context) (User, error) {
//	    return client.GetUser(ctx, id)
//	}, policy, "fetching user")
//
// # Errors
//
// Every error returned by an entry point is one of:
//
//   - *OperationError (matches ErrOperationFailed): the operation failed.
//     Error() is the resolved message; Unwrap() is the operation's error.
//   - *InterruptedError (matches ErrRetryInterrupted): ctx ended while
//     waiting between attempts.
//   - *PolicyError (matches ErrPolicyConfiguration): a RetryPolicy panicked or
//     returned a negative delay, or the classifier lists were malformed.
//   - ErrNilOperation itself, unwrapped: op was nil. Nothing is logged or
//     recorded.
//
// # Error kinds
//
// Failures are matched with Matcher predicates. MatchKind dispatches on the
// Kind carried by a *KindError; MatchIs and MatchAs wrap errors.Is and
// errors.As.
//
// # Testing
//
// The wait between attempts goes through the Clock interface. Tests install
// a fake clock with WithClock to assert delays without sleeping.
package resilience
