package tablebase

import "testing"

func TestOutcomeRawEncoding(t *testing.T) {
	tests := []struct {
		name string
		o    Outcome
		raw  byte
	}{
		{"Draw", Draw, 0},
		{"Lose(0)", Lose(0), 1},
		{"Lose(61)", Lose(61), 62},
		{"Lose(62)", Lose(62), 63},
		{"Win(0)", Win(0), 64},
		{"Win(61)", Win(61), 125},
		{"Unknown", Unknown, 126},
		{"Undefined", Undefined, 127},
	}
	for _, tc := range tests {
		if got := tc.o.Raw(); got != tc.raw {
			t.Errorf("%s.Raw() = %d, want %d", tc.name, got, tc.raw)
		}
	}
}

func TestOutcomeClampsOverlongDistance(t *testing.T) {
	if got := Win(1000).Raw(); got != Win(61).Raw() {
		t.Errorf("Win(1000) should clamp to Win(61), got raw %d want %d", got, Win(61).Raw())
	}
	if got := Lose(1000).Raw(); got != Lose(62).Raw() {
		t.Errorf("Lose(1000) should clamp to Lose(62), got raw %d want %d", got, Lose(62).Raw())
	}
	if got := Win(-5).Raw(); got != Win(0).Raw() {
		t.Errorf("Win(-5) should clamp to Win(0), got raw %d", got)
	}
}

func TestOutcomeFromRawRoundTrip(t *testing.T) {
	for raw := byte(0); raw <= 127; raw++ {
		o, err := OutcomeFromRaw(raw)
		if err != nil {
			t.Fatalf("OutcomeFromRaw(%d): %v", raw, err)
		}
		if o.Raw() != raw {
			t.Errorf("OutcomeFromRaw(%d).Raw() = %d", raw, o.Raw())
		}
	}
	if _, err := OutcomeFromRaw(128); err == nil {
		t.Error("expected an error for a raw byte above the valid range")
	}
}

func TestOutcomeOrdering(t *testing.T) {
	// short wins > long wins > draw > long losses > short losses
	if !Win(0).Better(Win(5)) {
		t.Error("Win(0) should beat Win(5)")
	}
	if !Win(5).Better(Draw) {
		t.Error("any win should beat a draw")
	}
	if !Draw.Better(Lose(0)) {
		t.Error("a draw should beat any loss")
	}
	if !Lose(5).Better(Lose(0)) {
		t.Error("a longer loss should beat a shorter one")
	}
	if Win(0).Better(Win(0)) {
		t.Error("an outcome should not be Better than itself")
	}
}

func TestOutcomePlus1(t *testing.T) {
	// Plus1 only moves a position one ply further from mate; it never
	// changes which side is winning (spec.md glossary: "Adding k to Win(n)
	// or Lose(n) yields Win(n+k)/Lose(n+k)").
	tests := []struct {
		in   Outcome
		want Outcome
	}{
		{Win(0), Win(1)},
		{Win(5), Win(6)},
		{Lose(0), Lose(1)},
		{Lose(3), Lose(4)},
		{Draw, Draw},
		{Unknown, Unknown},
		{Undefined, Undefined},
	}
	for _, tc := range tests {
		if got := tc.in.Plus1(); got != tc.want {
			t.Errorf("%v.Plus1() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestOutcomeDistance(t *testing.T) {
	if n, ok := Win(7).Distance(); !ok || n != 7 {
		t.Errorf("Win(7).Distance() = (%d, %v), want (7, true)", n, ok)
	}
	if n, ok := Lose(3).Distance(); !ok || n != 3 {
		t.Errorf("Lose(3).Distance() = (%d, %v), want (3, true)", n, ok)
	}
	if _, ok := Draw.Distance(); ok {
		t.Error("Draw.Distance() should report ok=false")
	}
}

func TestOutcomeIsTerminal(t *testing.T) {
	tests := []struct {
		o    Outcome
		want bool
	}{
		{Win(0), true},
		{Lose(0), true},
		{Draw, true},
		{Win(1), false},
		{Lose(1), false},
		{Unknown, false},
		{Undefined, false},
	}
	for _, tc := range tests {
		if got := tc.o.IsTerminal(); got != tc.want {
			t.Errorf("%v.IsTerminal() = %v, want %v", tc.o, got, tc.want)
		}
	}
}

func TestOutcomeStringClassification(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Draw, "Draw"},
		{Win(3), "Win(3)"},
		{Lose(2), "Lose(2)"},
		{Unknown, "Unknown"},
		{Undefined, "Undefined"},
	}
	for _, tc := range tests {
		if got := tc.o.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestReportLifecycle(t *testing.T) {
	if NeverVisitedReport.Processed {
		t.Error("NeverVisitedReport should start Unprocessed")
	}
	if !NeverVisitedReport.Outcome.IsUndefined() {
		t.Error("NeverVisitedReport should start Undefined, distinct from a visited-but-unresolved slot")
	}
	if UnprocessedReport.Processed {
		t.Error("UnprocessedReport should start Unprocessed")
	}
	if !UnprocessedReport.Outcome.IsUnknown() {
		t.Error("UnprocessedReport should start Unknown")
	}
	if NeverVisitedReport == UnprocessedReport {
		t.Error("NeverVisitedReport and UnprocessedReport must be distinguishable states")
	}
	p := NewProcessed(Win(2))
	if !p.Processed {
		t.Error("NewProcessed should set Processed")
	}
	if p.Outcome != Win(2) {
		t.Errorf("NewProcessed(Win(2)).Outcome = %v, want Win(2)", p.Outcome)
	}
}
