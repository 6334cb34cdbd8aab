package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// ErrStopped is returned when posting to a loop that is no longer running.
var ErrStopped = errors.New("engine loop stopped")

// FrameFunc observes the scene after each frame, from the loop goroutine.
type FrameFunc func(s *Scene, frame uint64, moved bool)

// Loop runs a Scene on one goroutine: posted mutations are applied in
// arrival order between frames, and the simulation advances once per frame
// regardless of how many mutations arrived.
type Loop struct {
	scene    *Scene
	interval time.Duration
	posts    chan func(*Scene)
	done     chan struct{}
	onFrame  FrameFunc
	logger   *slog.Logger
	frame    uint64
	panics   int
}

// NewLoop returns a loop ticking fps times per second. fps <= 0 uses 30.
func NewLoop(scene *Scene, fps int, logger *slog.Logger) *Loop {
	if fps <= 0 {
		fps = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		scene:    scene,
		interval: time.Second / time.Duration(fps),
		posts:    make(chan func(*Scene), 256),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// OnFrame registers fn to observe every frame. Call before Run.
func (l *Loop) OnFrame(fn FrameFunc) { l.onFrame = fn }

// Post queues fn to run on the loop goroutine. It blocks while the queue is
// full and returns ErrStopped once the loop has exited.
func (l *Loop) Post(fn func(*Scene)) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.posts <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*Scene)) error {
	finished := make(chan struct{})
	if err := l.Post(func(s *Scene) {
		defer close(finished)
		fn(s)
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run drives the scene until ctx is canceled. The frame ticker is stopped
// before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug("engine loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("engine loop stopped", "frames", l.frame, "panics", l.panics)
			return nil
		case fn := <-l.posts:
			l.apply(fn)
		case <-ticker.C:
			l.tick()
		}
	}
}

// apply runs one mutation. A panic is logged and discarded.
func (l *Loop) apply(fn func(*Scene)) {
	defer l.recoverFrame("mutation")
	fn(l.scene)
}

// tick advances the simulation and notifies the frame observer. A panic
// skips the rest of this frame only.
func (l *Loop) tick() {
	defer l.recoverFrame("frame")
	l.frame++
	moved := l.scene.Step()
	if l.onFrame != nil {
		l.onFrame(l.scene, l.frame, moved)
	}
}

func (l *Loop) recoverFrame(what string) {
	if r := recover(); r != nil {
		l.panics++
		l.logger.Error("recovered panic in engine loop",
			"phase", what,
			"frame", l.frame,
			"panic", fmt.Sprint(r),
			"stack", string(debug.Stack()))
	}
}
