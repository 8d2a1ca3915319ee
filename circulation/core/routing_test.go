package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
)

func Test_Route(t *testing.T) {
	pickupAtL2 := givenRequestEntry("r1", "p2", "L2")

	testCases := []struct {
		description        string
		transactionLibrary string
		homeLibrary        string
		firstPending       *core.HoldEntry
		expectedStatus     core.Status
		expectRequest      bool
	}{
		{"no request at home library", "L1", "L1", nil, core.StatusOnShelf, false},
		{"no request away from home", "L2", "L1", nil, core.StatusInTransit, false},
		{"request picked up here", "L2", "L1", &pickupAtL2, core.StatusAtDesk, true},
		{"request picked up here which is home", "L2", "L2", &pickupAtL2, core.StatusAtDesk, true},
		{"request picked up elsewhere at home", "L1", "L1", &pickupAtL2, core.StatusInTransit, false},
		{"request picked up elsewhere away from home", "L3", "L1", &pickupAtL2, core.StatusInTransit, false},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			decision := core.Route(tc.transactionLibrary, tc.homeLibrary, tc.firstPending)

			assert.Equal(t, tc.expectedStatus, decision.Status)
			if tc.expectRequest {
				require.NotNil(t, decision.Request)
				assert.Equal(t, tc.firstPending.ID, decision.Request.ID)
			} else {
				assert.Nil(t, decision.Request)
			}
		})
	}
}
