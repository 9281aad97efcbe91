package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finboard/internal/core"

	"github.com/google/uuid"
)

// decodeJSON reads one JSON object into dst. Bodies over maxBodyBytes,
// unknown fields and trailing data are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return core.Invalid("body", "request body too large")
		case errors.Is(err, io.EOF):
			return core.Invalid("body", "request body is empty")
		default:
			return core.Invalid("body", "malformed JSON: "+err.Error())
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return core.Invalid("body", "unexpected data after JSON object")
	}
	return nil
}

// parseTime accepts RFC 3339 timestamps and YYYY-MM-DD dates. A date is read
// in loc at the start of the day, or at its end when endOfDay is set.
func parseTime(field, s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, core.Invalid(field, "must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	}
	if endOfDay {
		return core.EndOfDay(d), nil
	}
	return d, nil
}

func parseOptionalTime(field string, s *string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseTime(field, *s, loc, endOfDay)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseAccountID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, core.Invalid("accountId", "is required")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, core.Invalid("accountId", "must be a UUID")
	}
	return id, nil
}

// pathID reads the {id} wildcard. Malformed ids cannot name an owned
// resource, so they are reported as not found.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, core.ErrNotFound
	}
	return id, nil
}

func queryInt(r *http.Request, key string) (*int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, core.Invalid(key, "must be an integer")
	}
	return &n, nil
}

func queryString(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	return &v
}
