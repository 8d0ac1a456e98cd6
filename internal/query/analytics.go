package query

import (
	"net/url"
	"strconv"

	"pressroom/internal/apperr"
)

// AnalyticsType names the entity an analytics series counts.
type AnalyticsType string

const (
	AnalyticsPosts AnalyticsType = "posts"
	AnalyticsUsers AnalyticsType = "users"
	AnalyticsMedia AnalyticsType = "media"
)

// Analytics periods are in days.
const (
	DefaultAnalyticsPeriod = 30
	MaxAnalyticsPeriod     = 365
)

// Analytics is a request for a daily series over the last Period days.
type Analytics struct {
	Type   AnalyticsType
	Period int
}

// ParseAnalytics reads "type" and "period" from query parameters.
func ParseAnalytics(values url.Values) (Analytics, error) {
	a := Analytics{Type: AnalyticsPosts, Period: DefaultAnalyticsPeriod}
	fields := map[string]string{}

	if raw := values.Get("type"); raw != "" {
		switch t := AnalyticsType(raw); t {
		case AnalyticsPosts, AnalyticsUsers, AnalyticsMedia:
			a.Type = t
		default:
			fields["type"] = "must be one of posts, users, media"
		}
	}
	if raw := values.Get("period"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxAnalyticsPeriod {
			fields["period"] = "must be a number of days between 1 and 365"
		} else {
			a.Period = n
		}
	}

	if len(fields) > 0 {
		return Analytics{}, apperr.Validation(fields)
	}
	return a, nil
}
