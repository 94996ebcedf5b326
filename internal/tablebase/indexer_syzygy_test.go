package tablebase

import (
	"testing"

	"github.com/kraktus/helpmate-tb/internal/board"
)

// TestSyzygyIndexerKBNvKConcreteIndex pins the indexer against the concrete
// KBNvK scenario worked through by hand: white king a1, knight b1, bishop
// c1, black king d1, White to move, canonicalizes to itself (white king
// already in A1D1D4, and the black king off the a1-h8 diagonal rules out a
// diagonal flip), and encodes to index 484157.
func TestSyzygyIndexerKBNvKConcreteIndex(t *testing.T) {
	pos, err := board.ParseFEN("8/8/8/8/8/8/8/KNBk4 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	l := LayoutFromPosition(pos)
	canon, _ := Canonicalize(l)

	si := NewSyzygyIndexer(canon.Material())
	idx, err := si.Encode(canon)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if idx != 484157 {
		t.Errorf("Encode(KBNvK starting layout) = %d, want 484157", idx)
	}
}

func TestSyzygyIndexerDistinctLayoutsGetDistinctIndices(t *testing.T) {
	mat, err := ParseMaterial("KRvK")
	if err != nil {
		t.Fatalf("ParseMaterial: %v", err)
	}
	si := NewSyzygyIndexer(mat)

	l1 := EmptyLayout(board.White)
	l1 = l1.Put(board.White, board.King, board.NewSquare(1, 0))
	l1 = l1.Put(board.Black, board.King, board.NewSquare(5, 5))
	l1 = l1.Put(board.White, board.Rook, board.NewSquare(3, 3))
	c1, _ := Canonicalize(l1)

	l2 := EmptyLayout(board.White)
	l2 = l2.Put(board.White, board.King, board.NewSquare(1, 0))
	l2 = l2.Put(board.Black, board.King, board.NewSquare(5, 5))
	l2 = l2.Put(board.White, board.Rook, board.NewSquare(4, 3))
	c2, _ := Canonicalize(l2)

	idx1, err := si.Encode(c1)
	if err != nil {
		t.Fatalf("Encode l1: %v", err)
	}
	idx2, err := si.Encode(c2)
	if err != nil {
		t.Fatalf("Encode l2: %v", err)
	}
	if idx1 == idx2 {
		t.Error("distinct layouts should not collide on the same Syzygy index")
	}
	if idx1 >= si.Size() || idx2 >= si.Size() {
		t.Errorf("indices %d, %d should be strictly less than Size() %d", idx1, idx2, si.Size())
	}
}

func TestSyzygyIndexerSizeIsPositive(t *testing.T) {
	for _, matStr := range []string{"KQvK", "KRvK", "KBNvK", "KRRvK"} {
		mat, err := ParseMaterial(matStr)
		if err != nil {
			t.Fatalf("ParseMaterial(%q): %v", matStr, err)
		}
		si := NewSyzygyIndexer(mat)
		if si.Size() == 0 {
			t.Errorf("%s: Size() should be positive", matStr)
		}
	}
}
