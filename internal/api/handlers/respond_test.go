package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/consumption?"+query, nil)
	return c
}

func TestParseRangeDateOnlyToCoversWholeDay(t *testing.T) {
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

	from, to, err := parseRange(rangeContext("from=2026-06-01&to=2026-06-10"), now, 30)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 6, 10, 23, 59, 59, 999999999, time.UTC), to)

	// a movement late on the last day is inside the range
	assert.False(t, time.Date(2026, 6, 10, 18, 30, 0, 0, time.UTC).After(to))
}

func TestParseRangeTimestampsAreExact(t *testing.T) {
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

	from, to, err := parseRange(rangeContext("from=2026-06-01T08:00:00Z&to=2026-06-10T08:00:00Z"), now, 30)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC), to)
}

func TestParseRangeDefaults(t *testing.T) {
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

	from, to, err := parseRange(rangeContext(""), now, 30)
	require.NoError(t, err)
	assert.Equal(t, now, to)
	assert.Equal(t, now.AddDate(0, 0, -30), from)

	_, _, err = parseRange(rangeContext("to=tomorrow"), now, 30)
	assert.Error(t, err)
}
