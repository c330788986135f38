package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eaisdo/config"
)

func TestNoneBackendDropsMessages(t *testing.T) {
	c := NewClient(&config.MessagingConfig{Backend: BackendNone})
	require.NoError(t, c.Connect())
	assert.NoError(t, c.Publish("eaisdo.nodes", []byte("{}")))
	assert.False(t, c.IsConnected())
	assert.Equal(t, BackendNone, c.Backend())
	c.Close()
}

func TestEmptyBackendIsNone(t *testing.T) {
	c := NewClient(&config.MessagingConfig{})
	assert.Equal(t, BackendNone, c.Backend())
	assert.NoError(t, c.Publish("t", nil))
}

func TestUnsupportedBackend(t *testing.T) {
	c := NewClient(&config.MessagingConfig{Backend: "amqp"})
	assert.ErrorContains(t, c.Connect(), "unsupported backend")
	assert.Error(t, c.Publish("t", nil))
}

func TestKafkaWithoutBrokers(t *testing.T) {
	c := NewClient(&config.MessagingConfig{Backend: BackendKafka})
	assert.ErrorContains(t, c.Connect(), "no brokers")
	assert.ErrorIs(t, c.Publish("t", nil), ErrNotConnected)
}

func TestReconfigureToNone(t *testing.T) {
	c := NewClient(&config.MessagingConfig{Backend: BackendKafka})
	require.NoError(t, c.Reconfigure(&config.MessagingConfig{Backend: BackendNone}))
	assert.Equal(t, BackendNone, c.Backend())
	assert.NoError(t, c.Publish("t", []byte("x")))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env := NewEnvelope("node.created", "admin", NodeChange{NodeName: "msk", District: "Центральный"})
	data, err := env.Encode()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, env.ID, got.ID)
	assert.Equal(t, "node.created", got.Type)

	var change NodeChange
	require.NoError(t, got.DecodePayload(&change))
	assert.Equal(t, "msk", change.NodeName)
}
