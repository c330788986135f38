package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps every published notification.
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     string          `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NodeChange is the payload for node.created, node.updated and node.deleted.
type NodeChange struct {
	NodeID   string `json:"node_id,omitempty"`
	NodeName string `json:"node_name,omitempty"`
	District string `json:"district,omitempty"`
}

// SessionChange is the payload for session.login and session.logout.
type SessionChange struct {
	Username string `json:"username"`
	Success  bool   `json:"success"`
}

func NewEnvelope(msgType, actor string, payload any) *Envelope {
	raw, _ := json.Marshal(payload)
	return &Envelope{
		ID:        uuid.NewString(),
		Type:      msgType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}
}

func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// DecodePayload unmarshals the envelope payload into v.
func (e *Envelope) DecodePayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}
