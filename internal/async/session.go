package async

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/socialcrawl/crawlctl/internal/display"
	"github.com/socialcrawl/crawlctl/internal/models"
)

var (
	ErrPollTimeout = errors.New("task polling timed out")
	ErrCancelled   = errors.New("task polling cancelled")
	ErrTaskFailed  = errors.New("task failed")
)

// CompletionFunc receives the final reply of a task that finished successfully
type CompletionFunc func(result models.TaskStatusResponse)

// Outcome is how a poll session ended
type Outcome struct {
	Result *models.TaskStatusResponse
	Err    error
}

// Session is one poll loop for one task, bound to one display surface
type Session struct {
	Token   uuid.UUID
	TaskID  models.TaskID
	Surface display.Surface

	poller     *Poller
	onComplete CompletionFunc
	ctx        context.Context
	cancel     context.CancelFunc
	claimed    atomic.Bool
	done       chan struct{}
	outcome    Outcome
}

func newSession(parent context.Context, p *Poller, taskID models.TaskID, surface display.Surface, onComplete CompletionFunc) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		Token:      uuid.New(),
		TaskID:     taskID,
		Surface:    surface,
		poller:     p,
		onComplete: onComplete,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// claim stops the loop and grants the caller the right to end the session.
// Exactly one caller ever gets true.
func (s *Session) claim() bool {
	if !s.claimed.CompareAndSwap(false, true) {
		return false
	}
	s.cancel()
	return true
}

// finish publishes the outcome; only the claimant calls it
func (s *Session) finish(outcome Outcome) {
	s.outcome = outcome
	close(s.done)
}

// Cancel stops polling and hides the progress indicator. Safe to call repeatedly.
func (s *Session) Cancel() {
	s.poller.cancel(s)
}

// Done is closed once the session has ended
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Active reports whether the session is still polling
func (s *Session) Active() bool {
	return !s.claimed.Load()
}

// Wait blocks until the session ends or ctx is done
func (s *Session) Wait(ctx context.Context) Outcome {
	select {
	case <-s.done:
		return s.outcome
	case <-ctx.Done():
		return Outcome{Err: ctx.Err()}
	}
}
