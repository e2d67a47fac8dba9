// Package transport connects the hub to the outside world: the publisher that
// sends road descriptions and the judge that scores answers.
//
// A Bus delivers inbound question payloads to a handler and sends answers as
// requests whose replies arrive later through a callback. Neither direction
// may block the caller waiting on the remote side.
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/transithub/internal/wire"
)

// Handler receives one raw inbound question payload.
type Handler func(payload any)

// ReplyFunc receives the judge's reply to one answer, or the error that
// prevented it. It is called at most once and may run on any goroutine.
type ReplyFunc func(payload any, err error)

// Bus is the message transport used by the hub.
type Bus interface {
	// Subscribe starts delivering question payloads to handler. Handlers run on
	// transport goroutines and must not block.
	Subscribe(ctx context.Context, handler Handler) error

	// Request sends an answer to the judge and returns without waiting for
	// the reply.
	Request(ctx context.Context, answer wire.Answer, reply ReplyFunc) error

	Close() error
}

// Supported bus kinds.
const (
	KindSocketIO = "socketio"
	KindRedis    = "redis"
	KindLoopback = "loopback"
)

// Options configures a Bus.
type Options struct {
	Kind               string
	URL                string
	Namespace          string
	QuestionEvent      string
	JudgeEvent         string
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
}

// Dial connects the bus selected by opts.Kind. The loopback bus has no remote
// side and is returned unconnected.
func Dial(ctx context.Context, opts Options) (Bus, error) {
	switch opts.Kind {
	case KindSocketIO, "":
		return DialSocketIO(ctx, opts)
	case KindRedis:
		return DialRedis(ctx, opts)
	case KindLoopback:
		return NewLoopback(nil), nil
	default:
		return nil, fmt.Errorf("unknown bus kind %q", opts.Kind)
	}
}
