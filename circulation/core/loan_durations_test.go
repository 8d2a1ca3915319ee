package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
)

func Test_LoanDurations_For(t *testing.T) {
	durations := core.BuildLoanDurations(21, map[string]int{"dvd": 7, "broken": 0})

	assert.Equal(t, 7*24*time.Hour, durations.For("dvd"))
	assert.Equal(t, 21*24*time.Hour, durations.For("book"))
	assert.Equal(t, 21*24*time.Hour, durations.For("broken"), "non-positive entries fall back")
	assert.Equal(t, core.DefaultLoanDays*24*time.Hour, core.DefaultLoanDurations().For("anything"))
	assert.Equal(t, core.DefaultLoanDays*24*time.Hour, core.LoanDurations{}.For("anything"), "zero value falls back")
}
