package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"unique", &pq.Error{Code: "23505"}, true},
		{"wrapped unique", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"fk", &pq.Error{Code: "23503"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestNullableTimeRoundTrip(t *testing.T) {
	if nt := nullableTime(time.Time{}); nt.Valid {
		t.Fatalf("zero time should be NULL, got %+v", nt)
	}
	if got := timeOrZero(sql.NullTime{}); !got.IsZero() {
		t.Fatalf("NULL should map to zero time, got %v", got)
	}

	jst := time.FixedZone("JST", 9*60*60)
	ts := time.Date(2024, 5, 1, 9, 0, 0, 0, jst)
	got := timeOrZero(nullableTime(ts))
	if !got.Equal(ts) || got.Location() != time.UTC {
		t.Fatalf("round trip = %v, want %v in UTC", got, ts)
	}
}
