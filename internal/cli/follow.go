package cli

import (
	"context"

	"github.com/eagraf/habitat-store/internal/installer"
)

// follow renders a task's progress until it finishes. If ctx ends first, typically on
// Ctrl-C, the task is cancelled and followed to the end.
func follow(ctx context.Context, task *installer.Task, r *renderer) (installer.Outcome, error) {
	type result struct {
		outcome installer.Outcome
		err     error
	}
	done := make(chan result, 1)
	go func() {
		outcome, err := task.WaitForResult(context.Background())
		done <- result{outcome, err}
	}()

	interrupted := ctx.Done()
	for {
		select {
		case ev := <-task.Progress():
			r.Render(ev)
		case <-interrupted:
			interrupted = nil
			task.RequestCancel()
		case res := <-done:
			r.Done()
			return res.outcome, res.err
		}
	}
}
