package service

import (
	"strings"
	"time"

	"projecthub/internal/apperrors"
	"projecthub/internal/patch"
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate accepts a calendar date or an RFC 3339 timestamp. Blank input means no date.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, apperrors.NewValidation(apperrors.FieldError{
		Field:   field,
		Message: field + " must be an ISO-8601 date",
	})
}

// mergeDate applies a PATCH date field to the stored value.
func mergeDate(field string, current *time.Time, in patch.Field[string]) (*time.Time, error) {
	if !in.Set {
		return current, nil
	}
	if in.Null {
		return nil, nil
	}
	return parseDate(field, in.Value)
}

// datesOrdered reports whether start <= end whenever both are set.
func datesOrdered(start, end *time.Time) bool {
	return start == nil || end == nil || !start.After(*end)
}
