package main

import (
	"bytes"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/circulation/query/itemstatus"
	"github.com/AntonStoeckl/library-circulation/internal/config"
)

func givenSQLiteEnvironment(t *testing.T) {
	t.Helper()

	t.Setenv("CIRCULATION_STORE_DRIVER", config.DriverSQLite)
	t.Setenv("CIRCULATION_STORE_DSN", filepath.Join(t.TempDir(), "circulation.db"))
	t.Setenv("CIRCULATION_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--env-file", ""}, args...))

	err := root.Execute()

	return stdout.String(), err
}

func Test_CLI_Migrate_Loan_And_Query(t *testing.T) {
	// arrange
	givenSQLiteEnvironment(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)
	_, err = run(t, "item", "add", "item-1", "--library", "L1", "--type", "book")
	require.NoError(t, err)

	// act
	loanOut, loanErr := run(t, "item", "loan", "item-1", "--patron", "P1", "--barcode", "B1", "--pickup", "L1")
	statusOut, statusErr := run(t, "--json", "item", "status", "item-1")
	holdsOut, holdsErr := run(t, "patron", "holds", "P1")
	historyOut, historyErr := run(t, "item", "history", "item-1")

	// assert
	require.NoError(t, loanErr)
	assert.Contains(t, loanOut, "ItemLoanedToPatron: item is on_loan")

	require.NoError(t, statusErr)
	var view itemstatus.ItemView
	require.NoError(t, jsoniter.Unmarshal([]byte(statusOut), &view))
	assert.Equal(t, core.StatusOnLoan, view.Status)
	require.Len(t, view.Holds, 1)
	assert.Equal(t, "P1", view.Holds[0].PatronID)

	require.NoError(t, holdsErr)
	assert.Contains(t, holdsOut, "loan     item-1")

	require.NoError(t, historyErr)
	assert.Contains(t, historyOut, core.ItemAddedToCirculationEventType)
	assert.Contains(t, historyOut, core.ItemLoanedToPatronEventType)
}

func Test_CLI_Reports_Rejected_Commands(t *testing.T) {
	// arrange
	givenSQLiteEnvironment(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)
	_, err = run(t, "item", "add", "item-1", "--library", "L1", "--type", "book")
	require.NoError(t, err)

	// act
	_, extendErr := run(t, "item", "extend", "item-1")
	_, addAgainErr := run(t, "item", "add", "item-1", "--library", "L1", "--type", "book")

	// assert
	assert.ErrorIs(t, extendErr, core.ErrInvalidTransition)
	assert.ErrorIs(t, addAgainErr, core.ErrItemAlreadyInCirculation)
}

func Test_CLI_Rejects_Invalid_Dates(t *testing.T) {
	// arrange
	givenSQLiteEnvironment(t)

	// act
	_, err := run(t, "item", "loan", "item-1", "--patron", "P1", "--end", "next week")

	// assert
	assert.ErrorContains(t, err, "parse date")
}

func Test_CLI_Rejects_Invalid_Config(t *testing.T) {
	// arrange
	givenSQLiteEnvironment(t)
	t.Setenv("CIRCULATION_STORE_DRIVER", "mysql")

	// act
	_, err := run(t, "migrate")

	// assert
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func Test_CLI_Simulate_Reports_Operations(t *testing.T) {
	// arrange
	givenSQLiteEnvironment(t)

	// act
	out, err := run(t, "simulate", "--items", "2", "--patrons", "3", "--workers", "2", "--duration", "300ms", "--seed", "7")

	// assert
	require.NoError(t, err)
	assert.Contains(t, out, "operations: ")
	assert.Contains(t, out, "latency p50")
}
