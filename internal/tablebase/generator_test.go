package tablebase

import (
	"testing"

	"github.com/kraktus/helpmate-tb/internal/board"
)

func TestGeneratorPopulatesPositionsAndQueue(t *testing.T) {
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

	if common.Counter == 0 {
		t.Error("expected at least one legal position to be enumerated for KRvK")
	}
	if len(queue.DesiredOutcomePosToProcess) == 0 && len(queue.LosingPosToProcess) == 0 {
		t.Error("expected at least one terminal (checkmate/stalemate) position to seed the tagger's queue")
	}
}

func TestCheckIndexerHandlerRoundTripsEveryPosition(t *testing.T) {
	mat, err := ParseMaterial("KRvK")
	if err != nil {
		t.Fatalf("ParseMaterial: %v", err)
	}
	handler := &CheckIndexerHandler{}
	gen := NewGeneratorWithHandler(mat, board.White, EmptyDescendants(), handler)
	gen.GeneratePositions()

	if handler.Mismatches != 0 {
		t.Errorf("NaiveIndexer round trip failed on %d generated positions", handler.Mismatches)
	}
}

func TestDefaultGeneratorHandlerMarksCheckmateAsTerminal(t *testing.T) {
	mat, err := ParseMaterial("KRvK")
	if err != nil {
		t.Fatalf("ParseMaterial: %v", err)
	}
	gen, err := NewGenerator(mat, board.White, t.TempDir())
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	gen.GeneratePositions()
	common, _ := gen.Result()

	foundTerminal := false
	for _, pair := range common.AllPos {
		for _, r := range pair {
			if r.Processed && r.Outcome.IsTerminal() {
				foundTerminal = true
			}
		}
	}
	if !foundTerminal {
		t.Error("expected at least one processed terminal outcome (Win(0)/Lose(0)/Draw) among generated positions")
	}
}
