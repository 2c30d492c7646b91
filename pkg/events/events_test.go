package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("IST", 19800))

	env, err := NewEnvelope(OrderStatusUpdated, userID, OrderStatusUpdatedData{OrderID: orderID, From: "pending", To: "completed"}, now)
	require.NoError(t, err)

	assert.Equal(t, 1, env.Version)
	assert.Equal(t, OrderStatusUpdated, env.Type)
	assert.Equal(t, userID, env.UserID)
	assert.Equal(t, time.UTC, env.OccurredAt.Location())
	_, err = uuid.Parse(env.EventID)
	require.NoError(t, err)

	var data OrderStatusUpdatedData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, orderID, data.OrderID)
	assert.Equal(t, "completed", data.To)
}

func TestNewEnvelopeRejectsUnmarshalable(t *testing.T) {
	_, err := NewEnvelope(OrderCreated, uuid.New(), make(chan int), time.Now())
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), Envelope{}))
	assert.NoError(t, p.Close())
}
