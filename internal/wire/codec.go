package wire

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// api mirrors encoding/json behavior so payloads round-trip the same way
// regardless of which side produced them.
var api = sonic.ConfigStd

// DecodeQuestion parses a JSON question.
func DecodeQuestion(data []byte) (Question, error) {
	var q Question
	if err := api.Unmarshal(data, &q); err != nil {
		return Question{}, fmt.Errorf("failed to decode question: %w", err)
	}
	return q, nil
}

// DecodeVerdict parses a JSON verdict.
func DecodeVerdict(data []byte) (Verdict, error) {
	var v Verdict
	if err := api.Unmarshal(data, &v); err != nil {
		return Verdict{}, fmt.Errorf("failed to decode verdict: %w", err)
	}
	return v, nil
}

// Encode marshals any wire message.
func Encode(msg any) ([]byte, error) {
	data, err := api.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", msg, err)
	}
	return data, nil
}

// QuestionFromPayload converts a transport payload into a Question. Transports
// hand over raw bytes, JSON text, or an already decoded JSON object.
func QuestionFromPayload(payload any) (Question, error) {
	data, err := payloadBytes(payload)
	if err != nil {
		return Question{}, err
	}
	return DecodeQuestion(data)
}

// VerdictFromPayload converts a transport payload into a Verdict.
func VerdictFromPayload(payload any) (Verdict, error) {
	data, err := payloadBytes(payload)
	if err != nil {
		return Verdict{}, err
	}
	return DecodeVerdict(data)
}

func payloadBytes(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case nil:
		return nil, fmt.Errorf("empty payload")
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case map[string]any, []any:
		data, err := api.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode payload: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported payload type %T", payload)
	}
}
