package loader

import (
	"context"
)

// Outcome is the single message an asynchronous load delivers.
type Outcome struct {
	Result *Result
	Err    error
}

// Async starts l.Load on its own goroutine. The returned channel receives
// exactly one Outcome and is then closed. There is no retry.
func Async(ctx context.Context, l SceneLoader, path string, progress ProgressFunc) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := l.Load(ctx, path, progress)
		if err != nil {
			out <- Outcome{Err: err}
			return
		}
		out <- Outcome{Result: res}
	}()
	return out
}
