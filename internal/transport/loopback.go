package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/transithub/internal/wire"
)

// Judge scores an answer. Used by the loopback bus in place of a remote judge.
type Judge func(wire.Answer) wire.Verdict

// Loopback is an in-process Bus. Questions are injected with Publish and
// answers are judged by a local function on a separate goroutine.
type Loopback struct {
	mu      sync.Mutex
	handler Handler
	judge   Judge
	sent    []wire.Answer
	closed  bool
}

// NewLoopback creates a loopback bus. A nil judge leaves every request
// without a reply.
func NewLoopback(judge Judge) *Loopback {
	return &Loopback{judge: judge}
}

func (b *Loopback) Subscribe(ctx context.Context, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("loopback bus is closed")
	}
	b.handler = handler
	return nil
}

// Publish delivers a question to the subscribed handler.
func (b *Loopback) Publish(q wire.Question) error {
	data, err := wire.Encode(q)
	if err != nil {
		return err
	}

	b.mu.Lock()
	handler := b.handler
	b.mu.Unlock()
	if handler == nil {
		return fmt.Errorf("no subscriber on loopback bus")
	}
	handler(data)
	return nil
}

func (b *Loopback) Request(ctx context.Context, answer wire.Answer, reply ReplyFunc) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("loopback bus is closed")
	}
	b.sent = append(b.sent, answer)
	judge := b.judge
	b.mu.Unlock()

	if judge == nil {
		return nil
	}
	go func() {
		data, err := wire.Encode(judge(answer))
		reply(data, err)
	}()
	return nil
}

// Sent returns every answer requested so far.
func (b *Loopback) Sent() []wire.Answer {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]wire.Answer, len(b.sent))
	copy(out, b.sent)
	return out
}

func (b *Loopback) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handler = nil
	return nil
}
