package async

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/socialcrawl/crawlctl/internal/display"
	"github.com/socialcrawl/crawlctl/internal/logger"
	"github.com/socialcrawl/crawlctl/internal/models"
)

const DefaultProgressText = "Processing..."

// StatusFetcher looks up the status of a server-side task
type StatusFetcher interface {
	TaskStatus(ctx context.Context, taskID models.TaskID) (*models.TaskStatusResponse, error)
}

type Options struct {
	Interval     time.Duration
	RefreshDelay time.Duration
	// Timeout bounds the whole session; zero means no limit
	Timeout time.Duration
	// MaxPolls bounds consecutive non-terminal ticks; zero means no limit
	MaxPolls int
	// Refresh runs once, RefreshDelay after a task succeeds
	Refresh func()
}

// Poller runs poll sessions, at most one per display surface
type Poller struct {
	fetcher StatusFetcher
	display display.Display
	opts    Options

	mu    sync.Mutex
	slots map[display.Surface]*Session
	// pending counts scheduled refreshes; idle is closed when it drops to zero
	pending int
	idle    chan struct{}
}

func NewPoller(fetcher StatusFetcher, disp display.Display, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	return &Poller{
		fetcher: fetcher,
		display: disp,
		opts:    opts,
		slots:   make(map[display.Surface]*Session),
	}
}

// Start begins polling taskID. A session already polling on the same surface is cancelled first.
func (p *Poller) Start(ctx context.Context, taskID models.TaskID, surface display.Surface, onComplete CompletionFunc) *Session {
	s := newSession(ctx, p, taskID, surface, onComplete)

	p.mu.Lock()
	prev := p.slots[surface]
	p.slots[surface] = s
	p.mu.Unlock()

	if prev != nil && prev.claim() {
		logger.Info("Replacing poll for task %s on %s with task %s", prev.TaskID, surface, taskID)
		prev.finish(Outcome{Err: ErrCancelled})
	}

	p.display.ShowProgress(DefaultProgressText)
	logger.Debug("Registered task %s for monitoring (session %s)", taskID, s.Token)

	go p.run(s)
	return s
}

// Cancel stops the session on surface, if any, and hides the progress indicator
func (p *Poller) Cancel(surface display.Surface) {
	p.mu.Lock()
	s := p.slots[surface]
	p.mu.Unlock()

	if s == nil {
		p.hideIfIdle()
		return
	}
	p.cancel(s)
}

// Stop cancels every running session
func (p *Poller) Stop() {
	p.mu.Lock()
	sessions := make([]*Session, 0, len(p.slots))
	for _, s := range p.slots {
		sessions = append(sessions, s)
	}
	p.mu.Unlock()

	for _, s := range sessions {
		p.cancel(s)
	}
}

// Drain waits until every scheduled summary refresh has run, or ctx is done
func (p *Poller) Drain(ctx context.Context) error {
	p.mu.Lock()
	if p.pending == 0 {
		p.mu.Unlock()
		return nil
	}
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Current returns the live session on surface
func (p *Poller) Current(surface display.Surface) *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slots[surface]
}

func (p *Poller) cancel(s *Session) {
	if s.claim() {
		p.release(s)
		s.finish(Outcome{Err: ErrCancelled})
		logger.Debug("Poll for task %s cancelled", s.TaskID)
	}
	p.hideIfIdle()
}

func (p *Poller) run(s *Session) {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if p.opts.Timeout > 0 {
		timer := time.NewTimer(p.opts.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	misses := 0
	for {
		select {
		case <-s.ctx.Done():
			// cancelled by the caller, by a replacing session, or by the parent context
			if s.claim() {
				p.release(s)
				p.hideIfIdle()
				s.finish(Outcome{Err: ErrCancelled})
			}
			return
		case <-deadline:
			p.timeout(s, fmt.Sprintf("no terminal status after %v", p.opts.Timeout))
			return
		case <-ticker.C:
			if p.tick(s) {
				return
			}
			misses++
			if p.opts.MaxPolls > 0 && misses >= p.opts.MaxPolls {
				p.timeout(s, fmt.Sprintf("no terminal status after %d polls", misses))
				return
			}
		}
	}
}

// tick performs one status exchange and reports whether the loop should end
func (p *Poller) tick(s *Session) bool {
	reply, err := p.fetcher.TaskStatus(s.ctx, s.TaskID)
	if err != nil {
		if s.ctx.Err() != nil {
			return false
		}
		logger.Error("Error checking task status: %v", err)
		return false
	}

	switch reply.Status {
	case models.StatusRunning:
		text := reply.Message
		if text == "" {
			text = DefaultProgressText
		}
		p.mu.Lock()
		if p.owns(s) {
			p.display.ShowProgress(text)
		} else {
			logger.Debug("Discarding stale status for task %s", s.TaskID)
		}
		p.mu.Unlock()
		return false

	case models.StatusSuccess:
		if !s.claim() {
			logger.Debug("Discarding stale status for task %s", s.TaskID)
			return true
		}
		p.release(s)
		p.hideIfIdle()
		p.display.ShowStatus(s.Surface, display.LevelSuccess, reply.Message)
		if s.onComplete != nil {
			s.onComplete(*reply)
		}
		p.scheduleRefresh()
		s.finish(Outcome{Result: reply})
		logger.Debug("Task %s completed and removed from monitoring", s.TaskID)
		return true

	case models.StatusError:
		if !s.claim() {
			logger.Debug("Discarding stale status for task %s", s.TaskID)
			return true
		}
		p.release(s)
		p.hideIfIdle()
		p.display.ShowStatus(s.Surface, display.LevelError, reply.Message)
		s.finish(Outcome{Result: reply, Err: fmt.Errorf("%w: %s", ErrTaskFailed, reply.Message)})
		logger.Error("Task %s failed: %s", s.TaskID, reply.Message)
		return true

	default:
		logger.Debug("Task %s reported non-terminal status %q", s.TaskID, reply.Status)
		return false
	}
}

func (p *Poller) timeout(s *Session, reason string) {
	if !s.claim() {
		return
	}
	p.release(s)
	p.hideIfIdle()
	p.display.ShowStatus(s.Surface, display.LevelError, fmt.Sprintf("Task %s timed out: %s", s.TaskID, reason))
	s.finish(Outcome{Err: fmt.Errorf("%w: task %s: %s", ErrPollTimeout, s.TaskID, reason)})
	logger.Warn("Gave up polling task %s: %s", s.TaskID, reason)
}

// scheduleRefresh runs Refresh once after RefreshDelay; Drain waits for it
func (p *Poller) scheduleRefresh() {
	if p.opts.Refresh == nil {
		return
	}

	p.mu.Lock()
	if p.pending == 0 {
		p.idle = make(chan struct{})
	}
	p.pending++
	p.mu.Unlock()

	time.AfterFunc(p.opts.RefreshDelay, func() {
		defer p.refreshDone()
		p.opts.Refresh()
	})
}

func (p *Poller) refreshDone() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending--
	if p.pending == 0 {
		close(p.idle)
	}
}

// hideIfIdle hides the shared progress indicator unless another surface is still polling
func (p *Poller) hideIfIdle() {
	p.mu.Lock()
	busy := len(p.slots) > 0
	p.mu.Unlock()

	if busy {
		return
	}
	p.display.HideProgress()
}

// owns reports whether s is the live session of its surface. Callers hold p.mu.
func (p *Poller) owns(s *Session) bool {
	cur := p.slots[s.Surface]
	return cur != nil && cur.Token == s.Token && !s.claimed.Load()
}

// release frees the surface slot if s still holds it
func (p *Poller) release(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur := p.slots[s.Surface]; cur != nil && cur.Token == s.Token {
		delete(p.slots, s.Surface)
	}
}
