package tablebase

import (
	"bytes"
	"testing"

	"github.com/kraktus/helpmate-tb/internal/board"
)

func TestTablebaseProberRetrieveOutcomeTriviallyDrawn(t *testing.T) {
	pos, err := board.ParseFEN("7k/8/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	p := &TablebaseProber{tables: make(map[Material][2]*LazyFileHandler)}
	out, err := p.RetrieveOutcome(pos, board.White)
	if err != nil {
		t.Fatalf("RetrieveOutcome: %v", err)
	}
	if out != Draw {
		t.Errorf("RetrieveOutcome on a bare-kings position = %v, want Draw", out)
	}
}

func TestTablebaseProberRetrieveOutcomeErrorsWhenTableMissing(t *testing.T) {
	pos, err := board.ParseFEN("7k/8/8/8/8/8/8/KR6 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	p := &TablebaseProber{tables: make(map[Material][2]*LazyFileHandler)}
	if _, err := p.RetrieveOutcome(pos, board.White); err == nil {
		t.Error("expected an error when no table is loaded for the position's material")
	}
}

func TestNewTablebaseProberErrorsWhenTableFileMissing(t *testing.T) {
	mat, err := ParseMaterial("KRvK")
	if err != nil {
		t.Fatalf("ParseMaterial: %v", err)
	}
	if _, err := NewTablebaseProber(mat, t.TempDir()); err == nil {
		t.Error("expected an error opening a prober over a directory with no table files")
	}
}

func TestProbeStopsImmediatelyOnATerminalRootPosition(t *testing.T) {
	// Black to move, already checkmated (white rook h8, white king b6):
	// Probe must return without ever touching p.tables.
	pos, err := board.ParseFEN("k6R/8/1K6/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	p := &TablebaseProber{tables: nil}
	moves, err := p.Probe(pos, board.White)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if moves.Len() != 0 {
		t.Errorf("Probe on a position with no legal moves should return an empty line, got %d moves", moves.Len())
	}
}

// TestProbePlaysHandComputedMateIn1Line runs the full Generator+Tagger
// pipeline over KRvK, compresses the result into a real table file in
// memory, and checks that Probe plays the textbook Ra8# forced mate
// (White King g6, Rook a1, Black King g8, White to move — see
// TestTaggerAssignsHandComputedMateIn1 for why this is mate in one ply)
// as a single move landing on an actual checkmate.
func TestProbePlaysHandComputedMateIn1Line(t *testing.T) {
	mat, err := ParseMaterial("KRvK")
	if err != nil {
		t.Fatalf("ParseMaterial: %v", err)
	}
	gen, err := NewGenerator(mat, board.White, t.TempDir())
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	gen.GeneratePositions()
	common, queue := gen.Result()
	NewTagger(common).ProcessPositions(queue)

	outcomes := make([]RawOutcome, len(common.AllPos))
	for i, pair := range common.AllPos {
		outcomes[i] = RawOutcome{
			White: pair[board.White].Outcome.Raw(),
			Black: pair[board.Black].Outcome.Raw(),
		}
	}
	var buf bytes.Buffer
	if err := CompressReports(&buf, outcomes); err != nil {
		t.Fatalf("CompressReports: %v", err)
	}
	h := &LazyFileHandler{indexer: common.DenseIndexer, coder: NewEncoderDecoder(newBytesReaderAt(buf.Bytes()))}
	p := &TablebaseProber{tables: map[Material][2]*LazyFileHandler{mat: {board.White: h, board.Black: h}}}

	pos, err := board.ParseFEN("6k1/8/6K1/8/8/8/8/R7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	moves, err := p.Probe(pos, board.White)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if moves.Len() != 1 {
		t.Fatalf("Probe should play exactly one move for a mate-in-1 position, got %d", moves.Len())
	}

	undo := pos.MakeMove(moves.Get(0))
	defer pos.UnmakeMove(moves.Get(0), undo)
	pos.UpdateCheckers()
	if !pos.IsCheckmate() {
		t.Errorf("Probe's chosen move %v did not deliver checkmate", moves.Get(0))
	}
}

func TestLazyFileHandlerOutcomeOfRoundTrip(t *testing.T) {
	mat, err := ParseMaterial("KRvK")
	if err != nil {
		t.Fatalf("ParseMaterial: %v", err)
	}
	pos, err := board.ParseFEN("7k/8/8/8/8/8/3R4/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	canon, _ := Canonicalize(LayoutFromPosition(pos))
	si := NewSyzygyIndexer(mat)
	idx, err := si.Encode(canon)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	outcomes := make([]RawOutcome, idx+1)
	outcomes[idx] = RawOutcome{White: Win(5).Raw(), Black: Lose(5).Raw()}
	var buf bytes.Buffer
	if err := CompressReports(&buf, outcomes); err != nil {
		t.Fatalf("CompressReports: %v", err)
	}

	h := &LazyFileHandler{indexer: si, coder: NewEncoderDecoder(newBytesReaderAt(buf.Bytes()))}
	out, err := h.OutcomeOf(pos)
	if err != nil {
		t.Fatalf("OutcomeOf: %v", err)
	}
	want := Win(5)
	if canon.Turn == board.Black {
		want = Lose(5)
	}
	if out != want {
		t.Errorf("OutcomeOf = %v, want %v", out, want)
	}
}
