package redispublisher_test

import (
	"context"
	"os"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/circulation/signals"
	. "github.com/AntonStoeckl/library-circulation/circulation/signals/redispublisher" //nolint:revive
)

func Test_NewPublisher_Rejects_Nil_Client(t *testing.T) {
	_, err := NewPublisher(nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func Test_Publisher_Channel_Uses_Prefix_And_Kind(t *testing.T) {
	// arrange
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer func() { _ = client.Close() }()

	publisher, err := NewPublisher(client, WithChannelPrefix("branch-7"))
	require.NoError(t, err)

	// act & assert
	assert.Equal(t, "branch-7:item_at_desk", publisher.Channel(signals.KindItemAtDesk))
	assert.Equal(t, "branch-7:transaction_logged", publisher.Channel(signals.KindTransactionLogged))
}

func Test_Publisher_Reports_Unreachable_Redis(t *testing.T) {
	// arrange
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer func() { _ = client.Close() }()

	publisher, err := NewPublisher(client)
	require.NoError(t, err)

	// act
	err = publisher.Deliver(context.Background(), signals.Signal{
		Kind:   signals.KindItemAtDesk,
		AtDesk: &core.ItemAtDesk{ItemID: "item-1"},
	})

	// assert
	assert.ErrorIs(t, err, ErrPublishFailed)
}

func Test_Publisher_Publishes_Signal_As_JSON(t *testing.T) {
	addr := os.Getenv("CIRCULATION_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CIRCULATION_TEST_REDIS_ADDR is not set")
	}

	// arrange
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()

	publisher, err := NewPublisher(client, WithChannelPrefix("circulation-test"))
	require.NoError(t, err)

	subscription := client.Subscribe(ctx, publisher.Channel(signals.KindItemAtDesk))
	defer func() { _ = subscription.Close() }()
	_, err = subscription.Receive(ctx)
	require.NoError(t, err)

	signal := signals.Signal{
		Kind: signals.KindItemAtDesk,
		AtDesk: &core.ItemAtDesk{
			ItemID:          "item-1",
			HoldID:          "hold-1",
			PatronID:        "P1",
			PickupLibraryID: "L1",
		},
	}

	// act
	err = publisher.Deliver(ctx, signal)
	require.NoError(t, err)

	// assert
	select {
	case message := <-subscription.Channel():
		var received signals.Signal
		require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(message.Payload, &received))
		assert.Equal(t, signals.KindItemAtDesk, received.Kind)
		assert.Equal(t, "P1", received.AtDesk.PatronID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
