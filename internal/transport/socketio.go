package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/transithub/internal/ctxlog"
	"github.com/specialistvlad/transithub/internal/wire"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	defaultConnectTimeout = 15 * time.Second
	// maxBacklog bounds the questions held while no handler is subscribed.
	maxBacklog = 256
)

// SocketIO is a Bus over a socket.io connection. Questions arrive as events;
// answers are emitted with an acknowledgement callback carrying the verdict.
//
// The question listener is attached before connecting, so questions the
// server emits right after the handshake are kept in a backlog until
// Subscribe hands over a handler.
type SocketIO struct {
	io   *socket.Socket
	opts Options

	mu       sync.Mutex
	handler  Handler
	backlog  []any
	flushing bool
	dropped  int
}

// DialSocketIO connects to the socket.io server at opts.URL and waits for the
// handshake to finish.
func DialSocketIO(ctx context.Context, opts Options) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("bus", KindSocketIO, "url", opts.URL)
	logger.Info("Connecting to socket.io server...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error: %v", errs)
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("'connect_error' event fired", "error", err)
		connectChan <- err
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Warn("Disconnected from socket.io server", "reason", reason)
	})

	bus := &SocketIO{io: io, opts: opts}
	io.On(types.EventName(opts.QuestionEvent), func(data ...any) {
		var payload any
		if len(data) > 0 {
			payload = data[0]
		}
		bus.deliver(payload)
	})

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return bus, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}
}

// Subscribe starts delivering question events to handler, beginning with
// any questions that arrived before it was called.
func (b *SocketIO) Subscribe(ctx context.Context, handler Handler) error {
	if !b.io.Connected() {
		return fmt.Errorf("socket.io client is not connected")
	}
	logger := ctxlog.FromContext(ctx)

	b.mu.Lock()
	b.handler = handler
	pending := len(b.backlog)
	if b.dropped > 0 {
		logger.Warn("Questions dropped before subscription", "dropped", b.dropped)
		b.dropped = 0
	}
	if pending > 0 && !b.flushing {
		b.flushing = true
		go b.flush()
	}
	b.mu.Unlock()

	logger.Debug("Subscribed to question event", "event", b.opts.QuestionEvent, "sid", b.io.Id(), "backlog", pending)
	return nil
}

// deliver hands payload to the handler, or queues it while there is no
// handler or an earlier backlog is still being flushed.
func (b *SocketIO) deliver(payload any) {
	b.mu.Lock()
	if b.handler == nil || b.flushing {
		if len(b.backlog) >= maxBacklog {
			b.backlog = b.backlog[1:]
			b.dropped++
		}
		b.backlog = append(b.backlog, payload)
		b.mu.Unlock()
		return
	}
	handler := b.handler
	b.mu.Unlock()
	handler(payload)
}

// flush drains the backlog in arrival order. Handlers may block, so it runs
// off the caller's goroutine.
func (b *SocketIO) flush() {
	for {
		b.mu.Lock()
		batch := b.backlog
		b.backlog = nil
		if len(batch) == 0 {
			b.flushing = false
			b.mu.Unlock()
			return
		}
		handler := b.handler
		b.mu.Unlock()

		for _, payload := range batch {
			handler(payload)
		}
	}
}

// Request emits the answer on the judge event. The verdict arrives through
// the acknowledgement.
func (b *SocketIO) Request(ctx context.Context, answer wire.Answer, reply ReplyFunc) error {
	if !b.io.Connected() {
		return fmt.Errorf("socket.io client is not connected")
	}
	ctxlog.FromContext(ctx).Debug("Emitting answer", "event", b.opts.JudgeEvent, "answer_id", answer.ID)

	payload := map[string]any{"id": answer.ID, "path": answer.Path}
	b.io.Emit(b.opts.JudgeEvent, payload, func(args []any, err error) {
		if err != nil {
			reply(nil, err)
			return
		}
		if len(args) == 0 {
			reply(nil, nil)
			return
		}
		reply(args[0], nil)
	})
	return nil
}

// Close disconnects the client.
func (b *SocketIO) Close() error {
	b.io.Disconnect()
	return nil
}
