package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublisherRecordsMessages(t *testing.T) {
	t.Parallel()

	pub := New()
	id1, err := pub.Publish(context.Background(), "draw-runs", map[string]int{"fetched": 4})
	require.NoError(t, err)
	require.Equal(t, "memory-1", id1)

	id2, err := pub.Publish(context.Background(), "draw-runs", map[string]int{"fetched": 0})
	require.NoError(t, err)
	require.Equal(t, "memory-2", id2)

	msgs := pub.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "draw-runs", msgs[0].Topic)
	require.Equal(t, map[string]int{"fetched": 4}, msgs[0].Payload)
}

func TestPublisherMessagesReturnsCopy(t *testing.T) {
	t.Parallel()

	pub := New()
	_, err := pub.Publish(context.Background(), "draw-runs", "payload")
	require.NoError(t, err)

	msgs := pub.Messages()
	msgs[0].Topic = "modified"
	require.Equal(t, "draw-runs", pub.Messages()[0].Topic)
}
