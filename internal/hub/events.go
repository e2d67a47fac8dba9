package hub

import (
	"context"
	"time"

	"github.com/specialistvlad/transithub/internal/ctxlog"
	"github.com/specialistvlad/transithub/internal/wire"
)

// event is one unit of work for the hub loop.
type event interface {
	apply(ctx context.Context, h *Hub)
}

// questionEvent carries a raw road description from the bus.
type questionEvent struct {
	payload any
}

func (e questionEvent) apply(ctx context.Context, h *Hub) {
	q, err := wire.QuestionFromPayload(e.payload)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Dropping undecodable question.", "error", err)
		h.metrics.DecodeErrors.Inc()
		return
	}
	h.HandleQuestion(ctx, q)
}

// verdictEvent carries the judge's reply to one answer.
type verdictEvent struct {
	answerID string
	seq      uint64
	payload  any
	err      error
}

func (e verdictEvent) apply(ctx context.Context, h *Hub) {
	logger := ctxlog.FromContext(ctx).With("answer_id", e.answerID)

	p, tracked := h.release(e.answerID, e.seq)
	if e.err != nil {
		logger.Warn("Judge request failed.", "error", e.err)
		h.metrics.DispatchErrors.Inc()
		return
	}

	v, err := wire.VerdictFromPayload(e.payload)
	if err != nil {
		logger.Warn("Dropping undecodable verdict.", "error", err)
		h.metrics.DecodeErrors.Inc()
		return
	}

	args := []any{"score", v.Score, "log", v.Log}
	if tracked {
		args = append(args, "latency", time.Since(p.sentAt))
	}
	logger.Info("⚖️ Judge verdict received.", args...)

	h.metrics.Verdicts.Inc()
	h.metrics.LastScore.Set(float64(v.Score))
	if h.onVerdict != nil {
		h.onVerdict(e.answerID, v)
	}
}

// missedEvent fires when an answer's reply timeout elapses.
type missedEvent struct {
	answerID string
	seq      uint64
}

func (e missedEvent) apply(ctx context.Context, h *Hub) {
	p, ok := h.release(e.answerID, e.seq)
	if !ok {
		return
	}
	ctxlog.FromContext(ctx).Warn("No verdict received within reply timeout.",
		"answer_id", e.answerID, "waited", time.Since(p.sentAt))
	h.metrics.MissedVerdicts.Inc()
}
