package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/command"
	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/circulation/query"
	"github.com/AntonStoeckl/library-circulation/circulation/shell/observable"
	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/sqliteengine"
	. "github.com/AntonStoeckl/library-circulation/internal/httpapi" //nolint:revive
)

var fakeClock = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T, cfg Config) http.Handler {
	t.Helper()

	db, err := sqliteengine.OpenDB(filepath.Join(t.TempDir(), "circulation.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := sqliteengine.NewEventStoreFromSQLDB(db)
	require.NoError(t, err)
	require.NoError(t, store.CreateSchema(context.Background()))

	commands, err := command.NewHandlers(store, command.DefaultPolicy(), observable.Config{})
	require.NoError(t, err)

	queries, err := query.NewHandlers(store, observable.Config{})
	require.NoError(t, err)

	if cfg.Now == nil {
		cfg.Now = func() time.Time { return fakeClock }
	}

	return NewHandler(cfg, commands, queries)
}

func do(t *testing.T, handler http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func givenItemOnShelf(t *testing.T, handler http.Handler, itemID string) {
	t.Helper()

	rec := do(t, handler, http.MethodPost, "/items",
		`{"itemId":"`+itemID+`","homeLibraryId":"L1","itemType":"book"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func Test_HTTP_Loan_And_Return_With_Correlation(t *testing.T) {
	// arrange
	handler := setupTestServer(t, Config{})
	givenItemOnShelf(t, handler, "item-1")

	// act
	loan := do(t, handler, http.MethodPost, "/items/item-1/loans",
		`{"patronId":"P1","patronBarcode":"B1","pickupLibraryId":"L1"}`, HeaderRequestID, "desk-42")
	returned := do(t, handler, http.MethodPost, "/items/item-1/return",
		`{"transactionLibraryId":"L1"}`, HeaderRequestID, "desk-42")
	status := do(t, handler, http.MethodGet, "/items/item-1", "")
	history := do(t, handler, http.MethodGet, "/items/item-1/history", "")

	// assert
	require.Equal(t, http.StatusCreated, loan.Code, loan.Body.String())
	assert.Equal(t, "desk-42", loan.Header().Get(HeaderRequestID))
	assert.Equal(t, string(core.StatusOnLoan), decode(t, loan)["itemStatus"])
	assert.NotEmpty(t, decode(t, loan)["holdId"])

	require.Equal(t, http.StatusOK, returned.Code, returned.Body.String())
	assert.Equal(t, "ItemReturnedByPatron", decode(t, returned)["eventType"])

	require.Equal(t, http.StatusOK, status.Code)
	assert.Equal(t, string(core.StatusOnShelf), decode(t, status)["status"])
	assert.Equal(t, true, decode(t, status)["available"])

	require.Equal(t, http.StatusOK, history.Code)
	entries, ok := decode(t, history)["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 3)
	assert.Equal(t, "desk-42", entries[1].(map[string]any)["correlationId"])
	assert.Equal(t, "desk-42", entries[2].(map[string]any)["correlationId"])
}

func Test_HTTP_Generates_RequestID_When_Missing(t *testing.T) {
	// arrange
	handler := setupTestServer(t, Config{})

	// act
	rec := do(t, handler, http.MethodGet, "/healthz", "")

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func Test_HTTP_Extend_On_Shelf_Answers_Conflict_With_Transition(t *testing.T) {
	// arrange
	handler := setupTestServer(t, Config{})
	givenItemOnShelf(t, handler, "item-1")

	// act
	rec := do(t, handler, http.MethodPost, "/items/item-1/loans/extend", "")

	// assert
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, string(core.StatusOnShelf), body["currentStatus"])
	assert.Equal(t, string(core.OperationExtendLoan), body["operation"])
}

func Test_HTTP_Extend_With_Negative_Renewal_Count_Is_Unprocessable(t *testing.T) {
	// arrange
	handler := setupTestServer(t, Config{})
	givenItemOnShelf(t, handler, "item-1")
	loan := do(t, handler, http.MethodPost, "/items/item-1/loans",
		`{"patronId":"P1","patronBarcode":"B1","pickupLibraryId":"L1"}`)
	require.Equal(t, http.StatusCreated, loan.Code, loan.Body.String())

	// act
	rec := do(t, handler, http.MethodPost, "/items/item-1/loans/extend", `{"renewalCount":-1}`)

	// assert
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func Test_HTTP_Request_Then_Cancel_Hold(t *testing.T) {
	// arrange
	handler := setupTestServer(t, Config{})
	givenItemOnShelf(t, handler, "item-1")

	requested := do(t, handler, http.MethodPost, "/items/item-1/requests",
		`{"patronId":"P2","patronBarcode":"B2","pickupLibraryId":"L2"}`)
	require.Equal(t, http.StatusCreated, requested.Code, requested.Body.String())
	holdID, ok := decode(t, requested)["holdId"].(string)
	require.True(t, ok)

	// act
	canceled := do(t, handler, http.MethodDelete, "/items/item-1/holds/"+holdID, "")
	canceledAgain := do(t, handler, http.MethodDelete, "/items/item-1/holds/"+holdID, "")
	holds := do(t, handler, http.MethodGet, "/patrons/P2/holds", "")

	// assert
	assert.Equal(t, http.StatusOK, canceled.Code, canceled.Body.String())
	assert.Equal(t, "HoldCanceled", decode(t, canceled)["eventType"])
	assert.Equal(t, http.StatusNotFound, canceledAgain.Code)
	require.Equal(t, http.StatusOK, holds.Code)
	assert.Empty(t, decode(t, holds)["requests"])
}

func Test_HTTP_Rejects_Malformed_Requests(t *testing.T) {
	// arrange
	handler := setupTestServer(t, Config{})
	givenItemOnShelf(t, handler, "item-1")

	testCases := []struct {
		name string
		path string
		body string
	}{
		{name: "add without item type", path: "/items", body: `{"itemId":"item-2","homeLibraryId":"L1"}`},
		{name: "loan without patron", path: "/items/item-1/loans", body: `{"pickupLibraryId":"L1"}`},
		{name: "return without library", path: "/items/item-1/return", body: `{}`},
		{name: "broken json", path: "/items/item-1/requests", body: `{"patronId":`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			rec := do(t, handler, http.MethodPost, tc.path, tc.body)

			// assert
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func Test_HTTP_Unknown_Item_Answers_NotFound(t *testing.T) {
	// arrange
	handler := setupTestServer(t, Config{})

	// act
	status := do(t, handler, http.MethodGet, "/items/nope", "")
	lost := do(t, handler, http.MethodPost, "/items/nope/lost", "")

	// assert
	assert.Equal(t, http.StatusNotFound, status.Code)
	assert.Equal(t, http.StatusNotFound, lost.Code)
}

func Test_HTTP_CORS_Preflight(t *testing.T) {
	// arrange
	handler := setupTestServer(t, Config{CORSOrigins: []string{"https://opac.example.org"}, Tracing: true})

	// act
	rec := do(t, handler, http.MethodOptions, "/items/item-1/loans", "",
		"Origin", "https://opac.example.org",
		"Access-Control-Request-Method", http.MethodPost,
	)

	// assert
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://opac.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}

func Test_StatusCodeOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid transition", err: &core.InvalidTransitionError{CurrentStatus: core.StatusMissing, Operation: core.OperationLoanItem}, want: http.StatusConflict},
		{name: "concurrency conflict", err: eventstore.ErrConcurrencyConflict, want: http.StatusConflict},
		{name: "empty queue", err: core.ErrEmptyQueue, want: http.StatusUnprocessableEntity},
		{name: "pickup library", err: core.ErrPickupLibraryRequired, want: http.StatusUnprocessableEntity},
		{name: "negative renewal count", err: core.ErrInvalidRenewalCount, want: http.StatusUnprocessableEntity},
		{name: "hold not found", err: core.ErrHoldNotFound, want: http.StatusNotFound},
		{name: "deadline", err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{name: "technical", err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCodeOf(tc.err))
		})
	}
}
