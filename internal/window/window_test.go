package window

import "testing"

func TestSplitSingleRange(t *testing.T) {
	first, second := Split(8, 2, 6)
	if first != (Range{Start: 2, End: 8}) {
		t.Fatalf("expected [2,8), got %+v", first)
	}
	if !second.Empty() {
		t.Fatalf("expected empty second range, got %+v", second)
	}
}

func TestSplitWrapsAtPhysicalEnd(t *testing.T) {
	first, second := Split(8, 6, 4)
	if first != (Range{Start: 6, End: 8}) {
		t.Fatalf("expected first range [6,8), got %+v", first)
	}
	if second != (Range{Start: 0, End: 2}) {
		t.Fatalf("expected second range [0,2), got %+v", second)
	}
	if got := (first.End - first.Start) + (second.End - second.Start); got != 4 {
		t.Fatalf("expected combined length 4, got %d", got)
	}
}

func TestSplitFullCapacity(t *testing.T) {
	cases := []struct {
		cursor     int
		wantFirst  Range
		wantSecond Range
	}{
		{cursor: 0, wantFirst: Range{0, 5}},
		{cursor: 3, wantFirst: Range{3, 5}, wantSecond: Range{0, 3}},
		{cursor: 4, wantFirst: Range{4, 5}, wantSecond: Range{0, 4}},
	}

	for _, tc := range cases {
		first, second := Split(5, tc.cursor, 5)
		if first != tc.wantFirst || second != tc.wantSecond {
			t.Fatalf("cursor %d: expected %+v %+v, got %+v %+v", tc.cursor, tc.wantFirst, tc.wantSecond, first, second)
		}
	}
}

func TestSplitZeroLength(t *testing.T) {
	first, second := Split(4, 3, 0)
	if !first.Empty() || !second.Empty() {
		t.Fatalf("expected empty ranges, got %+v %+v", first, second)
	}
}

func TestAdvanceAndRetreatWrap(t *testing.T) {
	if got := Advance(6, 4, 8); got != 2 {
		t.Fatalf("expected advance to wrap to 2, got %d", got)
	}
	if got := Advance(6, 2, 8); got != 0 {
		t.Fatalf("expected advance to land on 0, got %d", got)
	}
	if got := Retreat(2, 4, 8); got != 6 {
		t.Fatalf("expected retreat to wrap to 6, got %d", got)
	}
	if got := Retreat(5, 5, 8); got != 0 {
		t.Fatalf("expected retreat to land on 0, got %d", got)
	}
}
