package config

import "time"

// Config is the resolved hub configuration with defaults applied.
type Config struct {
	Bus         Bus
	Logging     Logging
	Healthcheck Healthcheck
}

// Bus describes how the hub reaches the question publisher and the judge.
type Bus struct {
	Kind               string
	URL                string
	Namespace          string
	QuestionEvent      string
	JudgeEvent         string
	ConnectTimeout     time.Duration
	ReplyTimeout       time.Duration
	InsecureSkipVerify bool
}

// Logging controls the slog handler.
type Logging struct {
	Level  string
	Format string
}

// Healthcheck configures the HTTP side server. Port 0 disables it.
type Healthcheck struct {
	Port int
}

const (
	DefaultBusKind        = "socketio"
	DefaultBusURL         = "http://localhost:3000/socket.io/"
	DefaultNamespace      = "/"
	DefaultQuestionEvent  = "question"
	DefaultJudgeEvent     = "judger_server"
	DefaultConnectTimeout = 15 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
)

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Bus: Bus{
			Kind:           DefaultBusKind,
			URL:            DefaultBusURL,
			Namespace:      DefaultNamespace,
			QuestionEvent:  DefaultQuestionEvent,
			JudgeEvent:     DefaultJudgeEvent,
			ConnectTimeout: DefaultConnectTimeout,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// fileRoot mirrors the HCL file layout. Every block and attribute is optional.
type fileRoot struct {
	Bus         *busBlock         `hcl:"bus,block"`
	Logging     *loggingBlock     `hcl:"logging,block"`
	Healthcheck *healthcheckBlock `hcl:"healthcheck,block"`
}

type busBlock struct {
	Kind               *string `hcl:"kind,optional"`
	URL                *string `hcl:"url,optional"`
	Namespace          *string `hcl:"namespace,optional"`
	QuestionEvent      *string `hcl:"question_event,optional"`
	JudgeEvent         *string `hcl:"judge_event,optional"`
	ConnectTimeout     *string `hcl:"connect_timeout,optional"`
	ReplyTimeout       *string `hcl:"reply_timeout,optional"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify,optional"`
}

type loggingBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type healthcheckBlock struct {
	Port *int `hcl:"port,optional"`
}
