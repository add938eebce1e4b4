package nats

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygateway/internal/common/events"
)

type publishedMsg struct {
	subject string
	payload []byte
	opts    []jetstream.PublishOpt
}

type fakeStream struct {
	msgs []publishedMsg
	err  error
}

func (f *fakeStream) Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.msgs = append(f.msgs, publishedMsg{subject: subject, payload: payload, opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return &jetstream.PubAck{Stream: "PUBLICAPI_EVENTS", Sequence: uint64(len(f.msgs))}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishUsesTypeSubject(t *testing.T) {
	stream := &fakeStream{}
	p := NewPublisher(stream, testLogger())

	event, err := events.NewEvent(events.TypeRefundCreated, "42", "refund", "rf_1", events.RefundCreated{PaymentID: "ch_abc", Amount: 100})
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, stream.msgs, 1)

	msg := stream.msgs[0]
	assert.Equal(t, "events.publicapi.refund.created", msg.subject)
	assert.Len(t, msg.opts, 1)

	var decoded events.Event
	require.NoError(t, json.Unmarshal(msg.payload, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, "rf_1", decoded.ResourceID)

	var data events.RefundCreated
	require.NoError(t, decoded.DecodeData(&data))
	assert.Equal(t, "ch_abc", data.PaymentID)
}

func TestPublishWrapsStreamError(t *testing.T) {
	cause := errors.New("no responders")
	p := NewPublisher(&fakeStream{err: cause}, testLogger())

	event, err := events.NewEvent(events.TypePaymentCancelled, "42", "payment", "ch_abc", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), event)
	assert.ErrorIs(t, err, cause)
}

func TestConfigEnabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{URL: "nats://localhost:4222"}.Enabled())
}
