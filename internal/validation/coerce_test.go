package validation

import (
	"math"
	"testing"
)

func TestAsNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", float64(2.5), 2.5, true},
		{"int", 3, 3, true},
		{"numeric string", " 42 ", 42, true},
		{"NaN rejected", math.NaN(), 0, false},
		{"NaN string rejected", "NaN", 0, false},
		{"garbage string", "high", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := asNumber(tt.in)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("asNumber(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestAsArray(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		wantLen int
		ok      bool
	}{
		{"any slice", []any{"a", "b"}, 2, true},
		{"string slice", []string{"a"}, 1, true},
		{"int slice", []int{1, 2, 3}, 3, true},
		{"comma separated", "T1, T2 ,T3", 3, true},
		{"bracketed", "[1,2]", 2, true},
		{"empty string", "", 0, true},
		{"empty brackets", "[]", 0, true},
		{"number", 7, 0, false},
		{"map", map[string]any{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := asArray(tt.in)
			if ok != tt.ok || (ok && len(got) != tt.wantLen) {
				t.Errorf("asArray(%v) = (%v, %v), want len %d ok %v", tt.in, got, ok, tt.wantLen, tt.ok)
			}
		})
	}
}

func TestAsArray_TrimsQuotesAndSpace(t *testing.T) {
	got, ok := asArray(`["T1", 'T2']`)
	if !ok || len(got) != 2 {
		t.Fatalf("asArray = (%v, %v)", got, ok)
	}
	if got[0] != "T1" || got[1] != "T2" {
		t.Errorf("elements = %v, want [T1 T2]", got)
	}
}
