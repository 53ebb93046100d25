package protocol

import (
	"testing"

	"sandvox.gg/internal/sim/blocks"
)

func TestCoerceInt(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{float64(7), 7, true},
		{float64(-3), -3, true},
		{float64(2.5), 0, false},
		{int(12), 12, true},
		{int64(40), 40, true},
		{"7", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := CoerceInt(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("CoerceInt(%v) = (%d,%v), want (%d,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestEditEntryResolve(t *testing.T) {
	if id, err := (EditEntry{Block: "stone"}).Resolve(); err != nil || id != blocks.Stone {
		t.Fatalf("resolve by name = (%v,%v)", id, err)
	}
	// encoding/json delivers numbers as float64.
	if id, err := (EditEntry{Block: float64(blocks.Stone)}).Resolve(); err != nil || id != blocks.Stone {
		t.Fatalf("resolve by id = (%v,%v)", id, err)
	}
	if _, err := (EditEntry{Block: "no_such_block"}).Resolve(); err == nil {
		t.Fatal("unknown name should fail")
	}
	if _, err := (EditEntry{Block: float64(999)}).Resolve(); err == nil {
		t.Fatal("out-of-palette id should fail")
	}
	if _, err := (EditEntry{Block: float64(1.5)}).Resolve(); err == nil {
		t.Fatal("fractional id should fail")
	}
	if _, err := (EditEntry{Block: nil}).Resolve(); err == nil {
		t.Fatal("missing block should fail")
	}
}

func TestIsKnownCode(t *testing.T) {
	for _, c := range []string{ErrProtoBadRequest, ErrProtoVersion, ErrSessionFull, ErrRateLimit, ErrBadRequest, ErrInvalidTarget, ErrStale, ErrInternal, ""} {
		if !IsKnownCode(c) {
			t.Errorf("IsKnownCode(%q) = false", c)
		}
	}
	if IsKnownCode("E_MADE_UP") {
		t.Error("unknown code accepted")
	}
}
