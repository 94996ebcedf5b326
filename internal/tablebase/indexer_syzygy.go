package tablebase

import (
	"sort"

	"github.com/kraktus/helpmate-tb/internal/board"
)

// This file ports the reference Syzygy-style "symmetric" indexer: a
// non-reversible encoding that, unlike NaiveIndexer, merges permutations of
// identical pieces (much denser for repeated-piece material), built from the
// same triangle/lower/mult-twist/KK tables used by real .rtbw/.rtbz files.
//
// Pawnless material is encoded exactly as the reference implementation
// does. Material with pawns uses a reduced version of the same recursive
// binomial scheme (lead pawns get their own leading group exactly as
// upstream, but the multi-file "a/b/c/d file" table split that upstream
// keeps to shave a further ~2x off file size is not reproduced); see
// DESIGN.md for the rationale. Both variants remain dense, collision-free
// encodings of canonical layouts, which is what the generator/tagger/prober
// pipeline actually needs.

// lower maps the b1-h1-h7 triangle to 0..35 (including the a1-h8 diagonal's
// LOWER half), ported verbatim from the reference tables.
var lowerTable = [64]uint64{
	28, 0, 1, 2, 3, 4, 5, 6,
	0, 29, 7, 8, 9, 10, 11, 12,
	1, 7, 30, 13, 14, 15, 16, 17,
	2, 8, 13, 31, 18, 19, 20, 21,
	3, 9, 14, 18, 32, 22, 23, 24,
	4, 10, 15, 19, 22, 33, 25, 26,
	5, 11, 16, 20, 23, 25, 34, 27,
	6, 12, 17, 21, 24, 26, 27, 35,
}

// multTwist is used to order same-role pieces into a canonical sequence
// before combining them with binomial coefficients.
var multTwist = [64]uint64{
	15, 63, 55, 47, 40, 48, 56, 12,
	62, 11, 39, 31, 24, 32, 8, 57,
	54, 38, 7, 23, 16, 4, 33, 49,
	46, 30, 22, 3, 0, 17, 25, 41,
	45, 29, 21, 2, 1, 18, 26, 42,
	53, 37, 6, 20, 19, 5, 34, 50,
	61, 10, 36, 28, 27, 35, 9, 58,
	14, 60, 52, 44, 43, 51, 59, 13,
}

// ppIdx encodes a pair of identical pieces (other than kings) sharing a
// file/rank symmetry reduction, ported verbatim from the reference tables.
var ppIdx = [10][64]uint64{
	{0, kkZ0, 1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12, 13, 14,
		15, 16, 17, 18, 19, 20, 21, 22,
		23, 24, 25, 26, 27, 28, 29, 30,
		31, 32, 33, 34, 35, 36, 37, 38,
		39, 40, 41, 42, 43, 44, 45, 46,
		kkZ0, 47, 48, 49, 50, 51, 52, 53,
		54, 55, 56, 57, 58, 59, 60, 61},
	{62, kkZ0, kkZ0, 63, 64, 65, kkZ0, 66,
		kkZ0, 67, 68, 69, 70, 71, 72, kkZ0,
		73, 74, 75, 76, 77, 78, 79, 80,
		81, 82, 83, 84, 85, 86, 87, 88,
		89, 90, 91, 92, 93, 94, 95, 96,
		kkZ0, 97, 98, 99, 100, 101, 102, 103,
		kkZ0, 104, 105, 106, 107, 108, 109, kkZ0,
		110, kkZ0, 111, 112, 113, 114, kkZ0, 115},
	{116, kkZ0, kkZ0, kkZ0, 117, kkZ0, kkZ0, 118,
		kkZ0, 119, 120, 121, 122, 123, 124, kkZ0,
		kkZ0, 125, 126, 127, 128, 129, 130, kkZ0,
		131, 132, 133, 134, 135, 136, 137, 138,
		kkZ0, 139, 140, 141, 142, 143, 144, 145,
		kkZ0, 146, 147, 148, 149, 150, 151, kkZ0,
		kkZ0, 152, 153, 154, 155, 156, 157, kkZ0,
		158, kkZ0, kkZ0, 159, 160, kkZ0, kkZ0, 161},
	{162, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 163,
		kkZ0, 164, kkZ0, 165, 166, 167, 168, kkZ0,
		kkZ0, 169, 170, 171, 172, 173, 174, kkZ0,
		kkZ0, 175, 176, 177, 178, 179, 180, kkZ0,
		kkZ0, 181, 182, 183, 184, 185, 186, kkZ0,
		kkZ0, kkZ0, 187, 188, 189, 190, 191, kkZ0,
		kkZ0, 192, 193, 194, 195, 196, 197, kkZ0,
		198, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 199},
	{200, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 201,
		kkZ0, 202, kkZ0, kkZ0, 203, kkZ0, 204, kkZ0,
		kkZ0, kkZ0, 205, 206, 207, 208, kkZ0, kkZ0,
		kkZ0, 209, 210, 211, 212, 213, 214, kkZ0,
		kkZ0, kkZ0, 215, 216, 217, 218, 219, kkZ0,
		kkZ0, kkZ0, 220, 221, 222, 223, kkZ0, kkZ0,
		kkZ0, 224, kkZ0, 225, 226, kkZ0, 227, kkZ0,
		228, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 229},
	{230, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 231,
		kkZ0, 232, kkZ0, kkZ0, kkZ0, kkZ0, 233, kkZ0,
		kkZ0, kkZ0, 234, kkZ0, 235, 236, kkZ0, kkZ0,
		kkZ0, kkZ0, 237, 238, 239, 240, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, 241, 242, 243, kkZ0, kkZ0,
		kkZ0, kkZ0, 244, 245, 246, 247, kkZ0, kkZ0,
		kkZ0, 248, kkZ0, kkZ0, kkZ0, kkZ0, 249, kkZ0,
		250, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 251},
	{kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 259,
		kkZ0, 252, kkZ0, kkZ0, kkZ0, kkZ0, 260, kkZ0,
		kkZ0, kkZ0, 253, kkZ0, kkZ0, 261, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, 254, 262, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, 255, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 256, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 257, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 258},
	{kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 268, kkZ0,
		kkZ0, kkZ0, 263, kkZ0, kkZ0, 269, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, 264, 270, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, 265, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 266, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 267, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0},
	{kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 274, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, 271, 275, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, 272, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 273, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0},
	{kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, 277, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, 276, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0},
}

// test45 is the a7-a5-c5 triangle used by the two-identical-pieces case to
// decide a final tie-break flip.
var test45 board.Bitboard

func init() {
	for _, s := range []board.Square{board.A7, board.A6, board.A5, board.B6, board.B5, board.C5} {
		test45 = test45.Set(s)
	}
}

func binomial(n, k uint64) uint64 {
	if k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	var r, d uint64 = 1, 1
	for d <= k {
		r = r * n / d
		n--
		d++
	}
	return r
}

// syzygyConsts bundles the combinatorics tables computed once from
// binomial(), mirroring the reference implementation's Consts::new().
type syzygyConsts struct {
	multIdx       [5][10]uint64
	multFactor    [5]uint64
	mapPawns      [64]uint64
	leadPawnIdx   [6][64]uint64
	leadPawnsSize [6][4]uint64
}

var syzConsts = computeSyzygyConsts()

func computeSyzygyConsts() syzygyConsts {
	var c syzygyConsts
	for i := 0; i < 5; i++ {
		var s uint64
		for j := 0; j < 10; j++ {
			c.multIdx[i][j] = s
			if i == 0 {
				s++
			} else {
				s += binomial(multTwist[invTriangle[j]], uint64(i))
			}
		}
		c.multFactor[i] = s
	}

	availableSquares := uint64(48)
	for leadCount := 1; leadCount <= 5; leadCount++ {
		for file := 0; file < 4; file++ {
			var idx uint64
			for rank := 1; rank < 7; rank++ {
				sq := file + 8*rank
				if leadCount == 1 {
					availableSquares--
					c.mapPawns[sq] = availableSquares
					availableSquares--
					c.mapPawns[sq^0x7] = availableSquares
				}
				c.leadPawnIdx[leadCount][sq] = idx
				idx += binomial(c.mapPawns[sq], uint64(leadCount-1))
			}
			c.leadPawnsSize[leadCount][file] = idx
		}
	}
	return c
}

// pieceSpec names one physical piece instance for grouping purposes.
type pieceSpec struct {
	Color     board.Color
	PieceType board.PieceType
}

// orderedPieces lists every piece instance of mat in the fixed traversal
// order the Syzygy scheme groups by: both kings, then non-pawn roles from
// most to least valuable (white instances before black within a role),
// then pawns last (white before black).
func orderedPieces(mat Material) []pieceSpec {
	out := make([]pieceSpec, 0, mat.Count())
	out = append(out, pieceSpec{board.White, board.King}, pieceSpec{board.Black, board.King})
	roles := []board.PieceType{board.Queen, board.Rook, board.Bishop, board.Knight}
	for _, pt := range roles {
		for i := uint8(0); i < mat.White[pt]; i++ {
			out = append(out, pieceSpec{board.White, pt})
		}
		for i := uint8(0); i < mat.Black[pt]; i++ {
			out = append(out, pieceSpec{board.Black, pt})
		}
	}
	for i := uint8(0); i < mat.White[board.Pawn]; i++ {
		out = append(out, pieceSpec{board.White, board.Pawn})
	}
	for i := uint8(0); i < mat.Black[board.Pawn]; i++ {
		out = append(out, pieceSpec{board.Black, board.Pawn})
	}
	return out
}

// groupLens computes the group sizes: the leading group (kings, or kings
// plus enough unique pieces to reach 3, or the smallest repeated-piece
// multiplicity when there are no 2-3 unique pieces to lead with), then one
// group per run of identical remaining pieces.
func groupLens(mat Material, pieces []pieceSpec) []int {
	firstLen := 0
	switch {
	case mat.HasPawns():
		firstLen = 0
	case mat.UniquePieces() >= 3:
		firstLen = 3
	case mat.UniquePieces() == 2:
		firstLen = 2
	default:
		firstLen = mat.MinLikeMan()
	}
	lens := []int{}
	if firstLen > 0 {
		lens = append(lens, firstLen)
	}
	rest := pieces[firstLen:]
	i := 0
	for i < len(rest) {
		j := i + 1
		for j < len(rest) && rest[j] == rest[i] {
			j++
		}
		lens = append(lens, j-i)
		i = j
	}
	return lens
}

// SyzygyIndexer implements the dense, non-reversible encoding. It is built
// per material configuration since the group lengths/factors depend on it.
type SyzygyIndexer struct {
	mat          Material
	numUnique    int
	minLikeMan   int
	pieces       []pieceSpec
	lens         []int
	factors      []uint64
}

// NewSyzygyIndexer computes the grouping/factor tables for mat once; the
// resulting indexer can then Encode any canonical layout of that material.
func NewSyzygyIndexer(mat Material) *SyzygyIndexer {
	pieces := orderedPieces(mat)
	lens := groupLens(mat, pieces)
	factors := make([]uint64, len(lens)+1)

	hasPawns := mat.HasPawns()
	freeSquares := 64 - lens[0]
	idx := uint64(1)
	for g := 0; g < len(lens); g++ {
		if g == 0 {
			factors[0] = idx
			switch {
			case hasPawns:
				idx *= syzConsts.leadPawnsSize[lens[0]][0]
			case mat.UniquePieces() >= 3:
				idx *= 31332
			case mat.UniquePieces() == 2:
				idx *= 462
			case mat.MinLikeMan() == 2:
				idx *= 278
			default:
				idx *= syzConsts.multFactor[mat.MinLikeMan()-1]
			}
			continue
		}
		factors[g] = idx
		idx *= binomial(uint64(freeSquares), uint64(lens[g]))
		freeSquares -= lens[g]
	}
	factors[len(lens)] = idx

	return &SyzygyIndexer{
		mat:        mat,
		numUnique:  mat.UniquePieces(),
		minLikeMan: mat.MinLikeMan(),
		pieces:     pieces,
		lens:       lens,
		factors:    factors,
	}
}

// Size returns the total number of distinct indices this indexer can
// produce for its material, i.e. the capacity a caller should allocate for
// a flat per-index outcome table.
func (t *SyzygyIndexer) Size() uint64 {
	return t.factors[len(t.factors)-1]
}

func offdiag(sq board.Square) bool {
	return sq.FlipDiagonal() != sq
}

// Encode assumes l is already canonical (Canonicalize has been applied).
func (t *SyzygyIndexer) Encode(l Layout) (uint64, error) {
	squares := make([]board.Square, 0, len(t.pieces))
	used := board.Bitboard(0)

	leadPawnCount := 0
	if t.mat.HasPawns() {
		// Lead pawns are every white pawn (canonicalization never swaps
		// which side "owns" the lead-pawn file group once colors/diagonal
		// have been fixed).
		for _, sq := range l.Pieces[board.White][board.Pawn].Squares() {
			squares = append(squares, sq)
			used = used.Set(sq)
		}
		leadPawnCount = len(squares)
		sort.Slice(squares, func(i, j int) bool {
			return syzConsts.mapPawns[squares[i]] > syzConsts.mapPawns[squares[j]]
		})
	}

	for _, pc := range t.pieces[leadPawnCount:] {
		bb := l.Pieces[pc.Color][pc.PieceType] &^ used
		sq := bb.LSB()
		if sq == board.NoSquare {
			return 0, newErr(ErrInternalInvariant, "syzygy indexer: missing piece for material %v", t.mat)
		}
		squares = append(squares, sq)
		used = used.Set(sq)
	}

	var idx uint64
	if t.mat.HasPawns() {
		idx = syzConsts.leadPawnIdx[leadPawnCount][squares[0]]
		rest := squares[1:leadPawnCount]
		sort.Slice(rest, func(i, j int) bool { return syzConsts.mapPawns[rest[i]] < syzConsts.mapPawns[rest[j]] })
		for i := 1; i < leadPawnCount; i++ {
			idx += binomial(syzConsts.mapPawns[squares[i]], uint64(i))
		}
	} else {
		idx = t.encodePieceSquares(squares)
	}

	idx *= t.factors[0]

	groupSq := t.lens[0]
	for g := 1; g < len(t.lens); g++ {
		lenG := t.lens[g]
		group := append([]board.Square{}, squares[groupSq:groupSq+lenG]...)
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })
		var n uint64
		for i, gsq := range group {
			adjust := 0
			for _, psq := range squares[:groupSq] {
				if gsq > psq {
					adjust++
				}
			}
			n += binomial(uint64(gsq)-uint64(adjust), uint64(i+1))
		}
		idx += n * t.factors[g]
		groupSq += lenG
	}

	return idx, nil
}

// encodePieceSquares handles the pawnless leading-group cases: the single
// king pair, a king pair plus one unique piece, or a run of identical
// pieces (2 or more of the same role).
func (t *SyzygyIndexer) encodePieceSquares(squares []board.Square) uint64 {
	if squares[0].Rank() >= 4 {
		for i := range squares {
			squares[i] = squares[i].FlipVertical()
		}
	}
	for i := 0; i < t.lens[0]; i++ {
		if !offdiag(squares[i]) {
			continue
		}
		if squares[i].FlipDiagonal().Rank() > squares[i].File() {
			for j := i; j < len(squares); j++ {
				squares[j] = squares[j].FlipDiagonal()
			}
		}
		break
	}

	switch {
	case t.numUnique > 2:
		adjust1 := 0
		if squares[1] > squares[0] {
			adjust1 = 1
		}
		adjust2 := 0
		if squares[2] > squares[0] {
			adjust2++
		}
		if squares[2] > squares[1] {
			adjust2++
		}
		switch {
		case offdiag(squares[0]):
			return uint64(triangle[squares[0]])*63*62 + (uint64(squares[1])-uint64(adjust1))*62 + (uint64(squares[2]) - uint64(adjust2))
		case offdiag(squares[1]):
			return 6*63*62 + uint64(squares[0].Rank())*28*62 + lowerTable[squares[1]]*62 + uint64(squares[2]) - uint64(adjust2)
		case offdiag(squares[2]):
			return 6*63*62 + 4*28*62 + uint64(squares[0].Rank())*7*28 + (uint64(squares[1].Rank())-uint64(adjust1))*28 + lowerTable[squares[2]]
		default:
			return 6*63*62 + 4*28*62 + 4*7*28 + uint64(squares[0].Rank())*7*6 + (uint64(squares[1].Rank())-uint64(adjust1))*6 + (uint64(squares[2].Rank()) - uint64(adjust2))
		}
	case t.numUnique == 2:
		return kkIdx[triangle[squares[0]]][squares[1]]
	case t.minLikeMan == 2:
		if triangle[squares[0]] > triangle[squares[1]] {
			squares[0], squares[1] = squares[1], squares[0]
		}
		if squares[0].File() >= 4 {
			for i := range squares {
				squares[i] = squares[i].FlipHorizontal()
			}
		}
		if squares[0].Rank() >= 4 {
			for i := range squares {
				squares[i] = squares[i].FlipVertical()
			}
		}
		if squares[0].FlipDiagonal().Rank() > squares[0].File() ||
			(!offdiag(squares[0]) && squares[1].FlipDiagonal().Rank() > squares[1].File()) {
			for i := range squares {
				squares[i] = squares[i].FlipDiagonal()
			}
		}
		if test45.IsSet(squares[1]) && triangle[squares[0]] == triangle[squares[1]] {
			squares[0], squares[1] = squares[1], squares[0]
			for i := range squares {
				squares[i] = squares[i].FlipVertical().FlipDiagonal()
			}
		}
		return ppIdx[triangle[squares[0]]][squares[1]]
	default:
		for i := 1; i < t.lens[0]; i++ {
			if triangle[squares[0]] > triangle[squares[i]] {
				squares[0], squares[i] = squares[i], squares[0]
			}
		}
		if squares[0].File() >= 4 {
			for i := range squares {
				squares[i] = squares[i].FlipHorizontal()
			}
		}
		if squares[0].Rank() >= 4 {
			for i := range squares {
				squares[i] = squares[i].FlipVertical()
			}
		}
		if squares[0].FlipDiagonal().Rank() > squares[0].File() {
			for i := range squares {
				squares[i] = squares[i].FlipDiagonal()
			}
		}
		for i := 1; i < t.lens[0]; i++ {
			for j := i + 1; j < t.lens[0]; j++ {
				if multTwist[squares[i]] > multTwist[squares[j]] {
					squares[i], squares[j] = squares[j], squares[i]
				}
			}
		}
		idx := syzConsts.multIdx[t.lens[0]-1][triangle[squares[0]]]
		for i := 1; i < t.lens[0]; i++ {
			idx += binomial(multTwist[squares[i]], uint64(i))
		}
		return idx
	}
}
