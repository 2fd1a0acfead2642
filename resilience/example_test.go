package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/trylite/resilience"
)

func ExampleExecute() {
	ctx := context.Background()

	_, err := resilience.Execute(ctx, nil, func(ctx context.Context) (string, error) {
		return "", errors.New("disk full")
	}, "saving report")

	fmt.Println(err)
	fmt.Println(errors.Unwrap(err))
	// Output:
	// saving report
	// disk full
}

func ExampleExecuteWithRetry() {
	ctx := context.Background()
	policy := resilience.NewBackoffPolicy(3, resilience.WithBaseUnit(time.Millisecond))

	attempts := 0
	result, err := resilience.ExecuteWithRetry(ctx, nil, func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("service unavailable")
		}
		return "Success!", nil
	}, policy, "An error occurred during execution")

	fmt.Println(result, err, attempts)
	// Output:
	// Success! <nil> 3
}

func ExampleExecuteWithKinds() {
	ctx := context.Background()

	_, err := resilience.ExecuteWithKinds(ctx, nil, func(ctx context.Context) (int, error) {
		return 0, resilience.NewError(resilience.KindInvalidState, "connection closed")
	},
		[]resilience.Matcher{
			resilience.MatchKind(resilience.KindInvalidArgument),
			resilience.MatchKind(resilience.KindInvalidState),
		},
		[]string{"bad input", "client not ready"},
	)

	fmt.Println(err)
	// Output:
	// client not ready
}

func ExampleExecuteWithFallback() {
	ctx := context.Background()

	name, err := resilience.ExecuteWithFallback(ctx, nil, func(ctx context.Context) (string, error) {
		return "", resilience.NewError(resilience.KindInvalidArgument, "empty id")
	}, resilience.MatchKind(resilience.KindInvalidArgument), "lookup failed", "anonymous")

	fmt.Println(name, err)
	// Output:
	// anonymous <nil>
}

func ExampleBackoffPolicy_RetryDelay() {
	p := resilience.NewBackoffPolicy(4, resilience.WithBaseUnit(time.Second), resilience.WithMaxDelay(5*time.Second))

	for attempt := 0; attempt < 4; attempt++ {
		fmt.Println(attempt, p.RetryDelay(attempt))
	}
	// Output:
	// 0 1s
	// 1 2s
	// 2 4s
	// 3 5s
}

func ExampleNewExecutor() {
	logger := resilience.FailureLoggerFunc(func(ctx context.Context, sev resilience.Severity, msg string, cause error) {
		fmt.Printf("[%s] %s: %v\n", sev, msg, cause)
	})
	ex := resilience.NewExecutor(resilience.WithLogger(logger), resilience.WithName("example"))

	_, _ = resilience.ExecuteWithRetry(context.Background(), ex, func(ctx context.Context) (int, error) {
		return 0, errors.New("timeout")
	}, resilience.NewBackoffPolicy(1, resilience.WithBaseUnit(0)), "giving up")
	// Output:
	// [warn] retry attempt #1 failed: timeout
	// [error] giving up: timeout
}
