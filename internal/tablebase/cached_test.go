package tablebase

import (
	"testing"

	"github.com/kraktus/helpmate-tb/internal/board"
)

func TestCachedProberHitsAndMisses(t *testing.T) {
	inner := &TablebaseProber{tables: make(map[Material][2]*LazyFileHandler)}
	cp := NewCachedProber(inner, 100)

	pos, err := board.ParseFEN("7k/8/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	if _, err := cp.RetrieveOutcome(pos, board.White); err != nil {
		t.Fatalf("RetrieveOutcome (miss): %v", err)
	}
	if cp.CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1 after one lookup", cp.CacheSize())
	}

	if _, err := cp.RetrieveOutcome(pos, board.White); err != nil {
		t.Fatalf("RetrieveOutcome (hit): %v", err)
	}
	if got := cp.HitRate(); got != 50.0 {
		t.Errorf("HitRate() = %v, want 50 after one miss and one hit", got)
	}
}

func TestCachedProberDistinguishesByWinner(t *testing.T) {
	inner := &TablebaseProber{tables: make(map[Material][2]*LazyFileHandler)}
	cp := NewCachedProber(inner, 100)

	pos, err := board.ParseFEN("7k/8/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	cp.RetrieveOutcome(pos, board.White)
	cp.RetrieveOutcome(pos, board.Black)
	if cp.CacheSize() != 2 {
		t.Errorf("CacheSize() = %d, want 2 (one entry per winner)", cp.CacheSize())
	}
}

func TestCachedProberEvictsAtHalfWhenFull(t *testing.T) {
	inner := &TablebaseProber{tables: make(map[Material][2]*LazyFileHandler)}
	cp := NewCachedProber(inner, 4)

	positions := []string{
		"7k/8/8/8/8/8/8/K7 w - - 0 1",
		"6k1/8/8/8/8/8/8/K7 w - - 0 1",
		"5k2/8/8/8/8/8/8/K7 w - - 0 1",
		"4k3/8/8/8/8/8/8/K7 w - - 0 1",
		"3k4/8/8/8/8/8/8/K7 w - - 0 1",
	}
	for _, fen := range positions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if _, err := cp.RetrieveOutcome(pos, board.White); err != nil {
			t.Fatalf("RetrieveOutcome: %v", err)
		}
	}
	if cp.CacheSize() > 4 {
		t.Errorf("CacheSize() = %d, should never exceed maxSize=4", cp.CacheSize())
	}
}

func TestCachedProberClearResetsState(t *testing.T) {
	inner := &TablebaseProber{tables: make(map[Material][2]*LazyFileHandler)}
	cp := NewCachedProber(inner, 100)

	pos, err := board.ParseFEN("7k/8/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	cp.RetrieveOutcome(pos, board.White)
	cp.Clear()

	if cp.CacheSize() != 0 {
		t.Errorf("CacheSize() after Clear = %d, want 0", cp.CacheSize())
	}
	if got := cp.HitRate(); got != 0 {
		t.Errorf("HitRate() after Clear = %v, want 0", got)
	}
}
