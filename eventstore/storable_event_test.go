package eventstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

func Test_BuildStorableEvent_RejectsInvalidJSON(t *testing.T) {
	testCases := []struct {
		description  string
		payloadJSON  []byte
		metadataJSON []byte
		expectedErr  error
	}{
		{"invalid payload", []byte(`{"invalid": json}`), []byte(`{}`), eventstore.ErrInvalidPayloadJSON},
		{"invalid metadata", []byte(`{"ItemID": "i-1"}`), []byte(`{"broken"`), eventstore.ErrInvalidMetadataJSON},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			_, err := eventstore.BuildStorableEvent("ItemLost", time.Now(), tc.payloadJSON, tc.metadataJSON)

			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_BuildStorableEventWithEmptyMetadata(t *testing.T) {
	occurredAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	event, err := eventstore.BuildStorableEventWithEmptyMetadata("ItemLost", occurredAt, []byte(`{"ItemID": "i-1"}`))

	require.NoError(t, err)
	assert.Equal(t, "ItemLost", event.EventType)
	assert.Equal(t, occurredAt, event.OccurredAt)
	assert.JSONEq(t, `{"ItemID": "i-1"}`, string(event.PayloadJSON))
	assert.JSONEq(t, `{}`, string(event.MetadataJSON))
}
