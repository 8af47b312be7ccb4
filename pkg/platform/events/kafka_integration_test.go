//go:build integration

package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"agentproof/pkg/testutil/containers"
)

func TestKafkaPublisherDelivers(t *testing.T) {
	redpanda := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const topic = "agentproof.events.test"

	adminClient, err := kgo.NewClient(kgo.SeedBrokers(redpanda.Brokers...))
	require.NoError(t, err)
	defer adminClient.Close()

	admin := kadm.NewClient(adminClient)
	_, err = admin.CreateTopics(ctx, 1, 1, nil, topic)
	require.NoError(t, err)

	publisher, err := NewKafka(redpanda.Brokers, topic,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithFlushInterval(100*time.Millisecond),
	)
	require.NoError(t, err)

	runCtx, stopRun := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- publisher.Run(runCtx) }()

	want := map[Kind]bool{
		KindChallengeIssued:  false,
		KindChallengePassed:  false,
		KindCredentialIssued: false,
	}
	for kind := range want {
		event := New(kind, "0x00000000000000000000000000000000000a11ce")
		publisher.Emit(ctx, event)
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		fetches := consumer.PollFetches(ctx)
		require.NoError(t, fetches.Err())
		fetches.EachRecord(func(record *kgo.Record) {
			var event Event
			require.NoError(t, json.Unmarshal(record.Value, &event))
			want[event.Kind] = true
		})

		all := true
		for _, seen := range want {
			all = all && seen
		}
		if all {
			break
		}
	}
	for kind, seen := range want {
		require.True(t, seen, "missing event kind %s", kind)
	}

	stopRun()
	require.ErrorIs(t, <-done, context.Canceled)
	require.NoError(t, publisher.Close())
}
