// Package hub runs the transportation hub: it turns each road description
// received from the bus into a shortest-path answer for the judge.
//
// All work happens on the goroutine that calls Run. Bus callbacks only
// enqueue events, so a graph rebuild and the search that follows it are never
// interleaved with another description or with a judge reply.
package hub

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/transithub/internal/ctxlog"
	"github.com/specialistvlad/transithub/internal/metrics"
	"github.com/specialistvlad/transithub/internal/pathfinder"
	"github.com/specialistvlad/transithub/internal/roadstore"
	"github.com/specialistvlad/transithub/internal/transport"
	"github.com/specialistvlad/transithub/internal/wire"
)

const (
	defaultQueueSize = 64
	maxPending       = 1024
)

// VerdictHook observes every judge reply after it has been logged.
type VerdictHook func(answerID string, v wire.Verdict)

// Hub owns the road store and drives the question/answer cycle.
type Hub struct {
	store        *roadstore.Store
	bus          transport.Bus
	metrics      *metrics.Metrics
	replyTimeout time.Duration
	newID        func() string
	onVerdict    VerdictHook

	events  chan event
	pending map[string]pendingAnswer
	seq     uint64
}

// pendingAnswer tracks one dispatch awaiting its verdict. seq tells apart
// dispatches that share an answer id.
type pendingAnswer struct {
	seq    uint64
	sentAt time.Time
	timer  *time.Timer
}

// Option configures a Hub.
type Option func(*Hub)

// WithMetrics records activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

// WithReplyTimeout warns about answers the judge has not replied to within d.
// Zero disables the check. Late replies are still observed.
func WithReplyTimeout(d time.Duration) Option {
	return func(h *Hub) { h.replyTimeout = d }
}

// WithIDGenerator overrides how answer ids are generated for questions that
// arrive without one.
func WithIDGenerator(fn func() string) Option {
	return func(h *Hub) { h.newID = fn }
}

// WithVerdictHook registers fn to observe judge replies.
func WithVerdictHook(fn VerdictHook) Option {
	return func(h *Hub) { h.onVerdict = fn }
}

// WithQueueSize sets the event queue capacity.
func WithQueueSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.events = make(chan event, n)
		}
	}
}

// New creates a hub around store and bus.
func New(store *roadstore.Store, bus transport.Bus, opts ...Option) *Hub {
	h := &Hub{
		store:   store,
		bus:     bus,
		newID:   uuid.NewString,
		events:  make(chan event, defaultQueueSize),
		pending: make(map[string]pendingAnswer),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	return h
}

// Store returns the road store owned by the hub.
func (h *Hub) Store() *roadstore.Store {
	return h.store
}

// Run subscribes to the bus and processes events until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Hub.Run started.")

	if err := h.bus.Subscribe(ctx, func(payload any) {
		h.enqueue(ctx, questionEvent{payload: payload})
	}); err != nil {
		return err
	}
	logger.Info("🚦 Hub is listening for questions.")

	for {
		select {
		case <-ctx.Done():
			h.stopTimers()
			logger.Info("Hub stopped.", "pending_answers", len(h.pending))
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case ev := <-h.events:
			ev.apply(ctx, h)
		}
	}
}

// enqueue hands an event to the loop. It blocks while the queue is full so a
// flood of questions applies backpressure to the transport.
func (h *Hub) enqueue(ctx context.Context, ev event) {
	select {
	case h.events <- ev:
	case <-ctx.Done():
	}
}

// HandleQuestion rebuilds the store from q, searches it, and sends the answer
// to the judge. It must run on the loop goroutine, or while Run is not running.
func (h *Hub) HandleQuestion(ctx context.Context, q wire.Question) wire.Answer {
	if q.ID == "" {
		q.ID = h.newID()
	}
	ctx, logger := ctxlog.With(ctx, "question_id", q.ID)
	start := time.Now()

	edges, clamped := q.Roads()
	if clamped {
		logger.Warn("Declared road count disagrees with supplied roads, clamping.",
			"road_count", q.RoadCount, "supplied", len(q.Edges), "used", len(edges))
		h.metrics.ClampedQuestions.Inc()
	}
	h.store.Rebuild(edges)
	h.metrics.GraphNodes.Set(float64(h.store.Len()))
	h.metrics.GraphEdges.Set(float64(h.store.EdgeCount()))

	origin, destination := q.Endpoints()
	res := pathfinder.ShortestPath(h.store, origin, destination)
	h.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	h.metrics.Questions.WithLabelValues(res.Outcome.String()).Inc()
	if res.Found() {
		h.metrics.PathCost.Observe(float64(res.Cost))
	}

	logger.Info("Route computed.",
		"origin", origin,
		"destination", destination,
		"outcome", res.Outcome.String(),
		"hops", max(len(res.Path)-1, 0),
		"cost", res.Cost,
	)
	logger.Debug("Search details.", "path", res.Path, "settled", res.Settled, "relaxations", res.Relaxations)

	answer := wire.NewAnswer(q.ID, res)
	h.dispatch(ctx, answer)
	return answer
}

// dispatch sends answer without waiting for the verdict.
func (h *Hub) dispatch(ctx context.Context, answer wire.Answer) {
	logger := ctxlog.FromContext(ctx)

	h.seq++
	seq := h.seq

	// A publisher may reuse ids; only the newest dispatch is tracked.
	if old, ok := h.pending[answer.ID]; ok {
		h.release(answer.ID, old.seq)
	}
	if len(h.pending) < maxPending {
		p := pendingAnswer{seq: seq, sentAt: time.Now()}
		if h.replyTimeout > 0 {
			p.timer = time.AfterFunc(h.replyTimeout, func() {
				h.enqueue(ctx, missedEvent{answerID: answer.ID, seq: seq})
			})
		}
		h.pending[answer.ID] = p
	} else {
		logger.Debug("Pending answer table full, reply latency will not be tracked.")
	}

	err := h.bus.Request(ctx, answer, func(payload any, err error) {
		h.enqueue(ctx, verdictEvent{answerID: answer.ID, seq: seq, payload: payload, err: err})
	})
	if err != nil {
		logger.Error("Failed to send answer to judge.", "error", err)
		h.metrics.DispatchErrors.Inc()
		h.release(answer.ID, seq)
		return
	}
	logger.Debug("Answer sent to judge.", "path", answer.Path)
}

// release stops tracking the dispatch of id numbered seq. It reports false
// when that dispatch is not tracked, either because it was never stored or
// because a newer dispatch replaced it.
func (h *Hub) release(id string, seq uint64) (pendingAnswer, bool) {
	p, ok := h.pending[id]
	if !ok || p.seq != seq {
		return pendingAnswer{}, false
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	delete(h.pending, id)
	return p, true
}

func (h *Hub) stopTimers() {
	for _, p := range h.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
	}
}
