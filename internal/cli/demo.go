package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/jonwraymond/trylite/resilience"
)

const demoSuccess = "Success!"

// Messages reported by the classify strategy, in kind order.
var (
	demoKinds    = []resilience.Matcher{resilience.MatchKind(resilience.KindInvalidArgument), resilience.MatchKind(resilience.KindInvalidState)}
	demoMessages = []string{"Invalid input supplied to operation", "Operation not allowed in current state"}
)

// demoFallback is substituted by the fallback strategy for invalid-state
// failures.
const demoFallback = "fallback value"

// lockedWriter serializes writes from concurrent runs.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// demoOperation announces each attempt on out and fails with probability
// rate, picking KindInvalidArgument or KindInvalidState at random. rng must
// not be shared with another operation.
func demoOperation(out io.Writer, rng *rand.Rand, rate float64) resilience.Operation[string] {
	return func(ctx context.Context) (string, error) {
		fmt.Fprintln(out, "Executing operation...")

		if rng.Float64() >= rate {
			return demoSuccess, nil
		}
		if rng.IntN(2) == 0 {
			return "", resilience.NewError(resilience.KindInvalidArgument, "random failure: bad argument")
		}
		return "", resilience.NewError(resilience.KindInvalidState, "random failure: bad state")
	}
}
