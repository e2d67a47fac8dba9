package transport

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/specialistvlad/transithub/internal/ctxlog"
	"github.com/specialistvlad/transithub/internal/wire"
)

// Envelope wraps an answer published over Redis. The judge replies by
// publishing a verdict on ReplyTo.
type Envelope struct {
	ID      string      `json:"id"`
	ReplyTo string      `json:"reply_to"`
	Answer  wire.Answer `json:"answer"`
}

// Redis is a Bus over Redis pub/sub. Questions arrive on the channel named by
// QuestionEvent; answers go out on JudgeEvent with a per-answer reply channel.
type Redis struct {
	client *redis.Client
	opts   Options
}

// DialRedis connects to the Redis server at opts.URL and checks it responds.
func DialRedis(ctx context.Context, opts Options) (*Redis, error) {
	logger := ctxlog.FromContext(ctx).With("bus", KindRedis)
	logger.Info("Connecting to Redis...")

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	}

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("Successfully connected", "addr", redisOpts.Addr)

	return &Redis{client: client, opts: opts}, nil
}

// ReplyChannel names the channel a verdict for answerID is published on.
func ReplyChannel(judgeChannel, answerID string) string {
	return judgeChannel + ".reply." + answerID
}

// Subscribe listens on the question channel until ctx is done.
func (b *Redis) Subscribe(ctx context.Context, handler Handler) error {
	logger := ctxlog.FromContext(ctx).With("channel", b.opts.QuestionEvent)

	sub := b.client.Subscribe(ctx, b.opts.QuestionEvent)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.opts.QuestionEvent, err)
	}
	logger.Debug("Subscribed to question channel")

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					logger.Warn("Question subscription closed")
					return
				}
				handler([]byte(msg.Payload))
			}
		}
	}()
	return nil
}

// Request publishes the answer and waits for the first verdict on its reply
// channel in the background.
func (b *Redis) Request(ctx context.Context, answer wire.Answer, reply ReplyFunc) error {
	replyTo := ReplyChannel(b.opts.JudgeEvent, answer.ID)
	data, err := wire.Encode(Envelope{ID: answer.ID, ReplyTo: replyTo, Answer: answer})
	if err != nil {
		return err
	}

	go func() {
		sub := b.client.Subscribe(ctx, replyTo)
		defer sub.Close()

		// The reply channel must be live before publishing or a fast judge
		// could answer into the void.
		if _, err := sub.Receive(ctx); err != nil {
			reply(nil, fmt.Errorf("failed to subscribe to %s: %w", replyTo, err))
			return
		}
		if err := b.client.Publish(ctx, b.opts.JudgeEvent, data).Err(); err != nil {
			reply(nil, fmt.Errorf("failed to publish answer: %w", err))
			return
		}

		select {
		case <-ctx.Done():
			reply(nil, ctx.Err())
		case msg, ok := <-sub.Channel():
			if !ok {
				reply(nil, fmt.Errorf("reply subscription %s closed", replyTo))
				return
			}
			reply([]byte(msg.Payload), nil)
		}
	}()
	return nil
}

// Close releases the connection pool.
func (b *Redis) Close() error {
	return b.client.Close()
}
