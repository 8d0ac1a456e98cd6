package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressroom/internal/apperr"
)

func TestParseAnalytics(t *testing.T) {
	a, err := ParseAnalytics(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Analytics{Type: AnalyticsPosts, Period: DefaultAnalyticsPeriod}, a)

	a, err = ParseAnalytics(url.Values{"type": {"media"}, "period": {"7"}})
	require.NoError(t, err)
	assert.Equal(t, Analytics{Type: AnalyticsMedia, Period: 7}, a)
}

func TestParseAnalyticsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		field  string
	}{
		{"unknown type", url.Values{"type": {"comments"}}, "type"},
		{"zero period", url.Values{"period": {"0"}}, "period"},
		{"period too long", url.Values{"period": {"366"}}, "period"},
		{"non-numeric period", url.Values{"period": {"week"}}, "period"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnalytics(tt.values)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidationFailed, e.Kind)
			assert.Contains(t, e.Fields, tt.field)
		})
	}
}
