package resrange

import "testing"

func TestParseFormatRoundTrip(t *testing.T) {
	cases := []string{
		"na",
		"1-50,60-100",
		"5",
		"1,3,5-10",
	}
	for _, c := range cases {
		s, err := Parse(c)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c, err)
		}
		got := Format(s)
		if got != c {
			t.Errorf("round-trip mismatch: Parse(%q) -> Format = %q", c, got)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	bad := []string{"1-50,40-60", "50-1", "a-b", "1-50,50-60", ""}
	for _, c := range bad {
		if c == "" {
			continue // "" parses as empty set by convention
		}
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", c)
		}
	}
}

func TestUnionIntersectDifference(t *testing.T) {
	a, _ := Parse("1-10")
	b, _ := Parse("5-15")
	if got := Format(Union(a, b)); got != "1-15" {
		t.Errorf("Union = %q, want 1-15", got)
	}
	if got := Format(Intersect(a, b)); got != "5-10" {
		t.Errorf("Intersect = %q, want 5-10", got)
	}
	if got := Format(Difference(a, b)); got != "1-4" {
		t.Errorf("Difference = %q, want 1-4", got)
	}
}

func TestSegmentsWithTolerance(t *testing.T) {
	s := New(1, 2, 3, 10, 11, 12, 20)
	segs := SegmentsWithTolerance(s, 5)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments (gap 3->10 is 7 > tol=5, gap 12->20 is 8 > 5), got %d", len(segs))
	}
	if Format(segs[0]) != "1-3" {
		t.Errorf("segment 0 = %q, want 1-3", Format(segs[0]))
	}
	if Format(segs[1]) != "10-12" {
		t.Errorf("segment 1 = %q, want 10-12", Format(segs[1]))
	}
	if Format(segs[2]) != "20" {
		t.Errorf("segment 2 = %q, want 20", Format(segs[2]))
	}
}

func TestSegmentsWithToleranceClosesExactGap(t *testing.T) {
	// a gap of exactly tol must still be closed into one run.
	s := New(1, 6, 11)
	segs := SegmentsWithTolerance(s, 5)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment (gaps of exactly tol=5 close), got %d", len(segs))
	}
	if Format(segs[0]) != "1-11" {
		t.Errorf("segment 0 = %q, want 1-11", Format(segs[0]))
	}
}

func TestTolerance(t *testing.T) {
	if Tolerance(50) != 5 {
		t.Errorf("Tolerance(50) = %d, want 5 (floor(2.5)=2 < 5)", Tolerance(50))
	}
	if Tolerance(300) != 15 {
		t.Errorf("Tolerance(300) = %d, want 15", Tolerance(300))
	}
}

func TestOverlapRules(t *testing.T) {
	a, _ := Parse("1-10")
	b, _ := Parse("8-20")
	if OverlapPermissive(a, b) {
		t.Errorf("expected no permissive overlap (|inter|=3 < 0.5*10 and < 0.5*13)")
	}
}

func TestOverlapPermissiveExact(t *testing.T) {
	a, _ := Parse("1-10") // 10 residues
	b, _ := Parse("6-10") // 5 residues, fully inside a
	// intersection = 5, 0.5*|b| = 2.5 -> true
	if !OverlapPermissive(a, b) {
		t.Errorf("expected overlap true")
	}
	c, _ := Parse("9-30") // 22 residues, intersection with a = {9,10} = 2
	// 0.5*|a|=5, 0.5*|c|=11, 2 < both -> false
	if OverlapPermissive(a, c) {
		t.Errorf("expected overlap false")
	}
}

func TestOverlapStrictRequiresBothRules(t *testing.T) {
	a, _ := Parse("1-100") // 100 residues
	b, _ := Parse("90-95") // 6 residues, fully inside a
	// intersection = 6; 0.33*|a| = 33 -> first rule fails
	if OverlapStrict(a, b) {
		t.Errorf("expected strict overlap false: intersection too small relative to A")
	}
	c, _ := Parse("1-40")
	d, _ := Parse("1-20")
	// intersection = 20; 0.33*|c|=13.2 passes; 0.5*|d|=10 passes -> true
	if !OverlapStrict(c, d) {
		t.Errorf("expected strict overlap true")
	}
}

func TestEmptySetOverlap(t *testing.T) {
	a := Set{}
	b, _ := Parse("1-10")
	if OverlapPermissive(a, b) || OverlapStrict(a, b) {
		t.Errorf("empty set must never overlap")
	}
}

func TestContains(t *testing.T) {
	s, _ := Parse("1-5,10-12")
	if !s.Contains(3) || !s.Contains(11) {
		t.Errorf("expected membership")
	}
	if s.Contains(7) {
		t.Errorf("7 should not be a member")
	}
}
