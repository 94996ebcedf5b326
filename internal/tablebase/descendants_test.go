package tablebase

import (
	"testing"

	"github.com/kraktus/helpmate-tb/internal/board"
)

func TestMaterialWinnerString(t *testing.T) {
	mat, err := ParseMaterial("KQvK")
	if err != nil {
		t.Fatalf("ParseMaterial: %v", err)
	}
	if got := (MaterialWinner{Material: mat, Winner: board.White}).String(); got != "KQvKw" {
		t.Errorf("String() = %q, want %q", got, "KQvKw")
	}
	if got := (MaterialWinner{Material: mat, Winner: board.Black}).String(); got != "KQvKb" {
		t.Errorf("String() = %q, want %q", got, "KQvKb")
	}
}

func TestDescendantsRetrieveOutcomeTriviallyDrawn(t *testing.T) {
	pos, err := board.ParseFEN("7k/8/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	d := EmptyDescendants()
	out, err := d.RetrieveOutcome(pos, board.White)
	if err != nil {
		t.Fatalf("RetrieveOutcome: %v", err)
	}
	if out != Draw {
		t.Errorf("RetrieveOutcome on a bare-kings position = %v, want Draw", out)
	}
}

// TestDescendantsOutcomeFromCapturesPromotion builds a KRvKN position where
// white's rook can capture the knight, dropping to the KRvK descendant
// material, and checks that the best resulting outcome keeps White as the
// winning side but counts one more ply (Plus1) for the capture itself,
// reported through a manually seeded descendant table.
func TestDescendantsOutcomeFromCapturesPromotion(t *testing.T) {
	pos, err := board.ParseFEN("7k/8/n7/8/8/8/8/R1K5 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	legal := pos.GenerateLegalMoves()
	var capture board.Move
	foundCapture := false
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.IsCapture(pos) {
			capture = m
			foundCapture = true
			break
		}
	}
	if !foundCapture {
		t.Fatal("expected a legal capture (rook takes knight) in the test position")
	}

	undo := pos.MakeMove(capture)
	postMat := MaterialFromPosition(pos)
	normalized := NewMaterial(postMat.White, postMat.Black)
	canon, _ := Canonicalize(LayoutFromPosition(pos))
	idx, err := NaiveIndexer{}.Encode(canon)
	if err != nil {
		pos.UnmakeMove(capture, undo)
		t.Fatalf("Encode: %v", err)
	}
	pos.UnmakeMove(capture, undo)

	wantOutcomeAtSlot := Win(3)
	outcomes := make([]RawOutcome, idx+1)
	outcomes[idx] = RawOutcome{
		Black: wantOutcomeAtSlot.Raw(),
		White: Lose(3).Raw(),
	}

	d := EmptyDescendants()
	d.tables[normalized] = [2]*FileHandler{
		board.White: {Indexer: NaiveIndexer{}, Outcomes: outcomes},
		board.Black: {Indexer: NaiveIndexer{}, Outcomes: outcomes},
	}

	best, allCaptureOrPromo, err := d.OutcomeFromCapturesPromotion(pos, board.White)
	if err != nil {
		t.Fatalf("OutcomeFromCapturesPromotion: %v", err)
	}
	if want := wantOutcomeAtSlot.Plus1(); best != want {
		t.Errorf("best outcome = %v, want %v (Plus1 of the seeded descendant outcome)", best, want)
	}
	if allCaptureOrPromo {
		t.Error("the king also has quiet legal moves, so not every legal move is a capture/promotion")
	}
}
