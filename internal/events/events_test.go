package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	publishFn func(context.Context, Event) error
}

func (s stubPublisher) Publish(ctx context.Context, ev Event) error { return s.publishFn(ctx, ev) }
func (s stubPublisher) Close() error                                { return nil }

func TestInstrument_ReportsOutcome(t *testing.T) {
	boom := errors.New("boom")
	var seen []string
	var errs []error

	p := Instrument(stubPublisher{
		publishFn: func(_ context.Context, ev Event) error {
			if ev.Type == NotePurged {
				return boom
			}
			return nil
		},
	}, func(typ string, err error) {
		seen = append(seen, typ)
		errs = append(errs, err)
	})

	require.NoError(t, p.Publish(context.Background(), Event{Type: NoteCreated}))
	require.ErrorIs(t, p.Publish(context.Background(), Event{Type: NotePurged}), boom)
	require.Equal(t, []string{NoteCreated, NotePurged}, seen)
	require.Equal(t, []error{nil, boom}, errs)
}

func TestDiscard(t *testing.T) {
	require.NoError(t, Discard.Publish(context.Background(), Event{Type: TagCreated}))
	require.NoError(t, Discard.Close())
}

func TestEncodeMessage(t *testing.T) {
	at := time.Unix(10, 0).UTC()
	msg, err := encodeMessage(Event{Type: TagDeleted, UserID: "u1", TagID: "t1", Count: 2, At: at})
	require.NoError(t, err)
	require.Equal(t, []byte("u1"), msg.Key)
	require.Equal(t, at, msg.Time)
	require.Equal(t, "type", msg.Headers[0].Key)
	require.Equal(t, []byte(TagDeleted), msg.Headers[0].Value)

	var back Event
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	require.Equal(t, "t1", back.TagID)
	require.Equal(t, int64(2), back.Count)
}
