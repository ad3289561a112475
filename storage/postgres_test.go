package storage

import (
	"errors"
	"testing"

	"github.com/lib/pq"
)

func TestCompareMigrations(t *testing.T) {
	for _, tc := range []struct {
		name     string
		wanted   []string
		existing []string
		want     []string
		wantErr  bool
	}{
		{
			name:   "empty store needs everything",
			wanted: []string{"a", "b"},
			want:   []string{"a", "b"},
		},
		{
			name:     "up to date",
			wanted:   []string{"a", "b"},
			existing: []string{"a", "b"},
			want:     []string{},
		},
		{
			name:     "partially applied",
			wanted:   []string{"a", "b", "c"},
			existing: []string{"a"},
			want:     []string{"b", "c"},
		},
		{
			name:     "store is ahead",
			wanted:   []string{"a"},
			existing: []string{"a", "b"},
			wantErr:  true,
		},
		{
			name:     "diverged",
			wanted:   []string{"a", "x"},
			existing: []string{"a", "b"},
			wantErr:  true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := compareMigrations(tc.wanted, tc.existing)
			if tc.wantErr {
				if err == nil {
					t.Fatal("compareMigrations() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("compareMigrations() error = %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("compareMigrations() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("compareMigrations()[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestUniqueViolation(t *testing.T) {
	if !uniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("duplicate key error not recognized")
	}
	if uniqueViolation(&pq.Error{Code: "42601"}) {
		t.Error("syntax error misread as duplicate key")
	}
	if uniqueViolation(errors.New("plain error")) {
		t.Error("plain error misread as duplicate key")
	}
}
