package reports

import (
	"strings"
	"time"

	"trading-journal/internal/analytics"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// FilterParams are the raw segmentation inputs of the CLI and HTTP API.
// Dates are YYYY-MM-DD or RFC 3339.
type FilterParams struct {
	Account   string
	AssetType string
	Strategy  string
	From      string
	To        string
}

// ParseFilter validates params into an analytics.Filter. A date-only To
// covers the whole day. Dates are read in loc.
func ParseFilter(p FilterParams, loc *time.Location) (analytics.Filter, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := analytics.Filter{
		AccountID:  strings.TrimSpace(p.Account),
		StrategyID: strings.TrimSpace(p.Strategy),
	}

	if at := strings.ToLower(strings.TrimSpace(p.AssetType)); at != "" {
		f.AssetType = models.AssetType(at)
		if !f.AssetType.Valid() {
			return f, apperrors.NewValidationError("asset_type", p.AssetType, "must be stocks, crypto, forex, commodities or indices")
		}
	}

	if p.From != "" {
		from, _, err := parseDate(p.From, loc)
		if err != nil {
			return f, apperrors.NewValidationError("from", p.From, "expected YYYY-MM-DD or RFC 3339")
		}
		f.ClosedFrom = &from
	}
	if p.To != "" {
		to, dateOnly, err := parseDate(p.To, loc)
		if err != nil {
			return f, apperrors.NewValidationError("to", p.To, "expected YYYY-MM-DD or RFC 3339")
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.ClosedTo = &to
	}

	if f.ClosedFrom != nil && f.ClosedTo != nil && f.ClosedTo.Before(*f.ClosedFrom) {
		return f, apperrors.NewValidationError("to", p.To, "is before from")
	}
	return f, nil
}

func parseDate(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(models.DateLayout, s, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}
