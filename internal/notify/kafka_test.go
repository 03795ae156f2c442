package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regdesk/internal/audit"
)

func TestNewKafkaSink(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Construction is lazy; no broker is dialed here.
	sink, err := NewKafkaSink([]string{"localhost:9092"}, "regdesk.audit", logger)
	require.NoError(t, err)
	require.NotNil(t, sink)
	assert.Equal(t, "regdesk.audit", sink.topic)
	sink.client.Close()
}

func TestNilSinkIsSafe(t *testing.T) {
	var sink *KafkaSink
	sink.Publish(context.Background(), audit.Event{Action: audit.ActionRegistrationCreated})
	sink.Close(context.Background())
}
