package pubsub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/duelsim/duelsim/internal/topicmgr"
)

func TestWatermillBridge_RoundTrip(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var received []Message
	done := make(chan struct{}, 1)

	err := bridge.Subscribe(ctx, "match.state.updated", func(ctx context.Context, msg Message) error {
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	require.NoError(t, err)

	err = bridge.Publish(ctx, Message{
		Topic:    "match.state.updated",
		MatchID:  "match:abc",
		Payload:  []byte(`{"round":1}`),
		Metadata: map[string]string{"phase": "play"},
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "match.state.updated", received[0].Topic)
	assert.Equal(t, "match:abc", received[0].MatchID)
	assert.JSONEq(t, `{"round":1}`, string(received[0].Payload))
	assert.Equal(t, "play", received[0].Metadata["phase"])
}

func TestTypedEvent_RegistersAndPublishes(t *testing.T) {
	topicmgr.Default().Reset()

	type damagePayload struct {
		Attacker string `json:"attacker"`
		Amount   int    `json:"amount"`
	}
	event := NewEvent[damagePayload]("match.damage.dealt", "A resolved damage application")

	registered, ok := topicmgr.Get("match.damage.dealt")
	require.True(t, ok)
	assert.Equal(t, "match", registered.Module())
	assert.Equal(t,
		[]string{"attacker", "amount"},
		registered.Metadata()["payload_fields"],
	)

	bridge := NewWatermillBridge()
	defer bridge.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan Message, 1)
	require.NoError(t, bridge.Subscribe(ctx, event.Name(), func(ctx context.Context, msg Message) error {
		done <- msg
		return nil
	}))

	require.NoError(t, PublishFor(ctx, bridge, event, "match:abc",
		damagePayload{Attacker: "Kaeya", Amount: 3}))

	select {
	case msg := <-done:
		assert.Equal(t, "match:abc", msg.MatchID)
		var decoded damagePayload
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, damagePayload{Attacker: "Kaeya", Amount: 3}, decoded)
	case <-time.After(2 * time.Second):
		t.Fatal("typed event was not delivered")
	}
}

func TestSetupOTel_DisabledIsNoop(t *testing.T) {
	tracer, cleanup, err := SetupOTel(context.Background(), DefaultTracingConfig())
	require.NoError(t, err)
	defer cleanup()

	_, span := tracer.Start(context.Background(), "test")
	span.End()
	assert.IsType(t, noop.NewTracerProvider().Tracer(""), tracer)
}

// recordingTracer builds an in-memory tracer and the recorder behind it.
func recordingTracer() (trace.Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return provider.Tracer("test"), recorder
}

func TestTracedPublisher_RecordsPublishSpan(t *testing.T) {
	tracer, recorder := recordingTracer()

	bridge := NewWatermillBridge()
	defer bridge.Close()

	pub := NewTracedPublisher(bridge, tracer)
	require.NoError(t, pub.Publish(context.Background(), Message{
		Topic:   "match.state.updated",
		MatchID: "match:abc",
		Payload: []byte(`{"round":1}`),
	}))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "pubsub.publish.match.state.updated", spans[0].Name())
}

func TestTracingMiddleware_RecordsProcessSpan(t *testing.T) {
	tracer, recorder := recordingTracer()

	handlerErr := assert.AnError
	wrapped := TracingMiddleware(tracer)(func(ctx context.Context, msg Message) error {
		return handlerErr
	})
	err := wrapped(context.Background(), Message{Topic: "match.finished", MatchID: "match:abc"})
	assert.ErrorIs(t, err, handlerErr)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "pubsub.process.match.finished", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestWatermillBridge_TracesSubscriptionHandlers(t *testing.T) {
	tracer, recorder := recordingTracer()

	bridge := NewWatermillBridge(WithTracer(tracer))
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{}, 1)
	require.NoError(t, bridge.Subscribe(ctx, "match.created", func(ctx context.Context, msg Message) error {
		done <- struct{}{}
		return nil
	}))

	require.NoError(t, bridge.Publish(ctx, Message{
		Topic:   "match.created",
		MatchID: "match:abc",
		Payload: []byte(`{}`),
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}

	deadline := time.After(2 * time.Second)
	for {
		for _, span := range recorder.Ended() {
			if span.Name() == "pubsub.process.match.created" {
				return
			}
		}
		select {
		case <-deadline:
			t.Fatal("no processing span was recorded")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
