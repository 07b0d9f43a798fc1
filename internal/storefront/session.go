package storefront

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/checkout"
	"finitefield.org/elarion-web/internal/config"
	"finitefield.org/elarion-web/internal/intro"
	"finitefield.org/elarion-web/internal/observability"
	"finitefield.org/elarion-web/internal/scroll"
)

// ErrSessionClosed is returned by operations on a torn-down session.
var ErrSessionClosed = errors.New("storefront: session closed")

// Options tune a Session. The zero value is usable.
type Options struct {
	Clock           intro.Clock
	IntroDelay      time.Duration
	ScrollThreshold float64
	Logger          *zap.Logger
	Instruments     *observability.Instruments
	Now             func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = intro.SystemClock
	}
	if o.IntroDelay <= 0 {
		o.IntroDelay = intro.DefaultDelay
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type request struct {
	ctx   context.Context
	event Event
	reply chan result
}

type result struct {
	snap Snapshot
	err  error
}

// Session is one visit. State lives on a single goroutine; callers interact
// through Dispatch and read through Snapshot.
type Session struct {
	id     string
	env    Env
	opts   Options
	logger *zap.Logger

	requests chan request
	quit     chan struct{}
	done     chan struct{}
	once     sync.Once

	intro  *intro.Sequence
	scroll *scroll.Listener

	snap       atomic.Pointer[Snapshot]
	lastActive atomic.Int64

	subsMu sync.Mutex
	subs   map[chan struct{}]struct{}

	// owned by run
	state   State
	version uint64
}

// NewSession mounts a session: it starts the event loop, the splash timer
// and the scroll listener.
func NewSession(id string, cat *catalog.Catalog, opts Options) *Session {
	opts = opts.withDefaults()
	s := &Session{
		id:       id,
		env:      Env{Catalog: cat, Scroll: scroll.Detector{Threshold: opts.ScrollThreshold}},
		opts:     opts,
		logger:   opts.Logger.With(zap.String("sessionID", id)),
		requests: make(chan request),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		subs:     make(map[chan struct{}]struct{}),
		state:    Initial(),
	}
	first := NewSnapshot(s.env, id, 0, s.state, Outcome{})
	s.snap.Store(&first)
	s.touch()

	go s.run()

	s.scroll = scroll.Listen(func(offset float64) {
		s.post(Scroll{Offset: offset})
	})
	s.intro = intro.Start(opts.Clock, opts.IntroDelay, func() {
		s.post(IntroElapsed{})
	})
	opts.Instruments.SessionOpened(context.Background())
	s.logger.Debug("session mounted")
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns the state as of the last applied event.
func (s *Session) Snapshot() Snapshot {
	return *s.snap.Load()
}

// LastActive reports when a caller last dispatched to the session.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(s.opts.Now().UnixNano())
}

// Dispatch applies e and returns the resulting snapshot. Events are applied
// in the order the loop receives them. A rejected event yields both the
// unchanged snapshot and the rejection error.
func (s *Session) Dispatch(ctx context.Context, e Event) (Snapshot, error) {
	if e == nil {
		return s.Snapshot(), ErrUnknownEvent
	}
	select {
	case <-s.done:
		return Snapshot{}, ErrSessionClosed
	default:
	}
	s.touch()
	req := request{ctx: ctx, event: e, reply: make(chan result, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return Snapshot{}, ErrSessionClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r.snap, r.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// post delivers environment events from the timer and scroll sources.
func (s *Session) post(e Event) {
	req := request{ctx: context.Background(), event: e, reply: make(chan result, 1)}
	select {
	case s.requests <- req:
		<-req.reply
	case <-s.done:
	}
}

// Scroll feeds a viewport offset through the scroll listener.
func (s *Session) Scroll(offset float64) (Snapshot, error) {
	if !s.scroll.Notify(offset) {
		return Snapshot{}, ErrSessionClosed
	}
	s.touch()
	return s.Snapshot(), nil
}

// IntroVisible reports whether the splash timer is still pending.
func (s *Session) IntroVisible() bool {
	return s.intro.Visible()
}

// Changes returns a channel signalled after every applied event and a
// function to stop listening. The channel is closed when the session ends.
func (s *Session) Changes() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subsMu.Lock()
	if s.subs == nil {
		s.subsMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()
	return ch, func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *Session) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Done is closed once the session has been torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close tears the session down: the splash timer is cancelled, the scroll
// listener detached and the loop stopped. Close is idempotent.
func (s *Session) Close() {
	s.once.Do(func() {
		pending := s.intro.Stop()
		s.scroll.Detach()
		close(s.quit)
		<-s.done

		s.subsMu.Lock()
		for ch := range s.subs {
			close(ch)
		}
		s.subs = nil
		s.subsMu.Unlock()

		s.opts.Instruments.SessionClosed(context.Background())
		s.logger.Debug("session closed", zap.Bool("introPending", pending))
	})
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case req := <-s.requests:
			req.reply <- s.apply(req)
		case <-s.quit:
			return
		}
	}
}

func (s *Session) apply(req request) result {
	kind := req.event.Kind()
	ctx, span := s.opts.Instruments.StartSpan(req.ctx, "storefront.dispatch",
		attribute.String("event", kind),
		attribute.String("session", s.id),
	)
	defer span.End()

	next, out := Reduce(s.env, s.state, req.event)
	s.state = next
	s.version++
	snap := NewSnapshot(s.env, s.id, s.version, next, out)
	s.snap.Store(&snap)
	s.opts.Instruments.Event(ctx, kind)

	if _, ok := req.event.(SubmitCheckout); ok {
		s.recordCheckout(ctx, out)
	}
	if out.Err != nil && !errors.Is(out.Err, checkout.ErrIncomplete) {
		span.RecordError(out.Err)
		s.logger.Warn("event rejected", zap.String("event", kind), zap.Error(out.Err))
	} else {
		s.logger.Debug("event applied", zap.String("event", kind), zap.Uint64("version", s.version))
	}
	s.notify()
	return result{snap: snap, err: out.Err}
}

func (s *Session) recordCheckout(ctx context.Context, out Outcome) {
	switch {
	case out.Err != nil:
		s.opts.Instruments.Checkout(ctx, "incomplete")
		return
	case out.Notice == "":
		return
	}
	s.opts.Instruments.Checkout(ctx, "placed")
	s.logger.Info("order placed", zap.String("total", s.snap.Load().Total.StringFixed(2)))
}

// OptionsFrom maps loaded configuration onto session options.
func OptionsFrom(cfg config.StorefrontConfig, logger *zap.Logger, inst *observability.Instruments) Options {
	return Options{
		IntroDelay:      cfg.IntroDelay,
		ScrollThreshold: cfg.ScrollThreshold,
		Logger:          logger,
		Instruments:     inst,
	}
}
