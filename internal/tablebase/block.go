package tablebase

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zstd"
)

// On-disk tables are a sequence of self-delimiting blocks, each a 24-byte
// header followed by a zstd-compressed payload of (black, white) outcome
// byte pairs. Random access scans headers linearly from the start of the
// file until the target index falls inside [IndexFrom, IndexTo) -- a file
// typically holds only a handful of blocks, so this costs at most a few
// header reads (BlockHeaderSize bytes each) before the matching block's
// payload is decompressed. Grounded on compression.rs's Block/BlockHeader,
// adapted to the teacher's io.ReadFull/io.EOF binary-I/O convention from
// book.go rather than deku's declarative struct encoding (no Go analogue
// in the example pack).

// BlockElements is the number of outcome pairs per block: 500MB uncompressed
// at 2 bytes/pair.
const BlockElements = 250_000_000

// BlockHeaderSize is the fixed byte size of a BlockHeader on disk.
const BlockHeaderSize = 24

// RawOutcome is the 2-byte on-disk encoding of one position's outcome for
// both sides to move.
type RawOutcome struct {
	Black byte
	White byte
}

// BlockHeader describes one block's index range and compressed payload size.
type BlockHeader struct {
	IndexFrom uint64 // inclusive
	IndexTo   uint64 // exclusive
	BlockSize uint64 // compressed payload size, in bytes
}

// SizeIncludingHeader returns how many bytes this block occupies on disk,
// header included -- the stride used to advance to the next block.
func (h BlockHeader) SizeIncludingHeader() int64 {
	return BlockHeaderSize + int64(h.BlockSize)
}

// IdxIsInBlock reports whether idx falls inside this block's index range.
func (h BlockHeader) IdxIsInBlock(idx uint64) bool {
	return h.IndexFrom <= idx && idx < h.IndexTo
}

// NbElements returns how many outcome pairs this block covers.
func (h BlockHeader) NbElements() int {
	return int(h.IndexTo - h.IndexFrom)
}

func (h BlockHeader) writeTo(w io.Writer) error {
	var buf [BlockHeaderSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], h.IndexFrom)
	binary.LittleEndian.PutUint64(buf[8:16], h.IndexTo)
	binary.LittleEndian.PutUint64(buf[16:24], h.BlockSize)
	_, err := w.Write(buf[:])
	return err
}

func readBlockHeaderAt(r io.ReaderAt, offset int64) (BlockHeader, error) {
	var buf [BlockHeaderSize]byte
	if _, err := r.ReadAt(buf[:], offset); err != nil {
		return BlockHeader{}, err
	}
	return BlockHeader{
		IndexFrom: binary.LittleEndian.Uint64(buf[0:8]),
		IndexTo:   binary.LittleEndian.Uint64(buf[8:16]),
		BlockSize: binary.LittleEndian.Uint64(buf[16:24]),
	}, nil
}

// Block is one header plus its compressed outcome-pair payload.
type Block struct {
	Header     BlockHeader
	Compressed []byte
}

// NewBlock compresses pairs (which represent outcome indices
// [indexFrom, indexFrom+len(pairs))) into a single block at zstd level 21,
// matching the reference implementation's compression ratio/speed tradeoff
// for tables that are written once and read many times.
func NewBlock(pairs []RawOutcome, indexFrom uint64) (*Block, error) {
	raw := make([]byte, 0, len(pairs)*2)
	for _, p := range pairs {
		raw = append(raw, p.Black, p.White)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(21)))
	if err != nil {
		return nil, wrapErr(ErrTableIO, err, "creating zstd encoder")
	}
	compressed := enc.EncodeAll(raw, nil)
	enc.Close()

	return &Block{
		Header: BlockHeader{
			IndexFrom: indexFrom,
			IndexTo:   indexFrom + uint64(len(pairs)),
			BlockSize: uint64(len(compressed)),
		},
		Compressed: compressed,
	}, nil
}

// WriteTo serializes the block (header then payload) to w.
func (b *Block) WriteTo(w io.Writer) (int64, error) {
	if err := b.Header.writeTo(w); err != nil {
		return 0, err
	}
	n, err := w.Write(b.Compressed)
	return int64(BlockHeaderSize + n), err
}

// DecompressOutcomes expands the block's payload back into outcome pairs.
func (b *Block) DecompressOutcomes() ([]RawOutcome, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, wrapErr(ErrTableIO, err, "creating zstd decoder")
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(b.Compressed, nil)
	if err != nil {
		return nil, wrapErr(ErrTableIO, err, "decompressing block payload")
	}
	n := b.Header.NbElements()
	if len(raw) != n*2 {
		return nil, newErr(ErrInternalInvariant, "block decompressed to %d bytes, expected %d", len(raw), n*2)
	}
	out := make([]RawOutcome, n)
	for i := 0; i < n; i++ {
		out[i] = RawOutcome{Black: raw[2*i], White: raw[2*i+1]}
	}
	return out, nil
}

// GetOutcome returns the outcome pair at idx, which must fall inside this
// block's range.
func (b *Block) GetOutcome(idx uint64) (RawOutcome, error) {
	if !b.Header.IdxIsInBlock(idx) {
		return RawOutcome{}, newErr(ErrIndexOutOfRange, "index %d outside block range [%d, %d)", idx, b.Header.IndexFrom, b.Header.IndexTo)
	}
	outcomes, err := b.DecompressOutcomes()
	if err != nil {
		return RawOutcome{}, err
	}
	return outcomes[idx-b.Header.IndexFrom], nil
}

// BlockWriter streams Reports into a sequence of BlockElements-sized
// compressed blocks, used when a generation run persists a freshly tagged
// table to disk.
type BlockWriter struct {
	w   io.Writer
	buf []RawOutcome
	at  uint64
}

func NewBlockWriter(w io.Writer) *BlockWriter {
	return &BlockWriter{w: w, buf: make([]RawOutcome, 0, BlockElements)}
}

// Append queues one more (black, white) outcome pair, flushing a full block
// to the underlying writer whenever BlockElements accumulate.
func (bw *BlockWriter) Append(pair RawOutcome) error {
	bw.buf = append(bw.buf, pair)
	if len(bw.buf) == BlockElements {
		return bw.flush()
	}
	return nil
}

func (bw *BlockWriter) flush() error {
	if len(bw.buf) == 0 {
		return nil
	}
	block, err := NewBlock(bw.buf, bw.at)
	if err != nil {
		return err
	}
	if _, err := block.WriteTo(bw.w); err != nil {
		return wrapErr(ErrTableIO, err, "writing block at index %d", bw.at)
	}
	bw.at += uint64(len(bw.buf))
	bw.buf = bw.buf[:0]
	return nil
}

// Close flushes any partial final block.
func (bw *BlockWriter) Close() error {
	return bw.flush()
}

// EncoderDecoder wraps a random-access reader over a compressed table file,
// scanning block headers linearly to find the block containing a given
// index -- the same strategy the reference implementation uses, since a
// table file typically has only a handful of blocks.
type EncoderDecoder struct {
	r io.ReaderAt
}

func NewEncoderDecoder(r io.ReaderAt) *EncoderDecoder {
	return &EncoderDecoder{r: r}
}

// OutcomeOf scans block headers from the start of the file until it finds
// the one containing idx, then decompresses just that block.
func (ed *EncoderDecoder) OutcomeOf(idx uint64) (RawOutcome, error) {
	var offset int64
	for {
		header, err := readBlockHeaderAt(ed.r, offset)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return RawOutcome{}, wrapErr(ErrTableIO, err, "reading block header at offset %d", offset)
		}
		if header.IdxIsInBlock(idx) {
			payload := make([]byte, header.BlockSize)
			if _, err := ed.r.ReadAt(payload, offset+BlockHeaderSize); err != nil {
				return RawOutcome{}, wrapErr(ErrTableIO, err, "reading block payload at offset %d", offset+BlockHeaderSize)
			}
			block := &Block{Header: header, Compressed: payload}
			return block.GetOutcome(idx)
		}
		offset += header.SizeIncludingHeader()
	}
	return RawOutcome{}, newErr(ErrNotFound, "index %d not found in table", idx)
}

// DecompressFile reads and decompresses every block in the file, in order.
func (ed *EncoderDecoder) DecompressFile() ([]RawOutcome, error) {
	var out []RawOutcome
	var offset int64
	for {
		header, err := readBlockHeaderAt(ed.r, offset)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, wrapErr(ErrTableIO, err, "reading block header at offset %d", offset)
		}
		payload := make([]byte, header.BlockSize)
		if _, err := ed.r.ReadAt(payload, offset+BlockHeaderSize); err != nil {
			return nil, wrapErr(ErrTableIO, err, "reading block payload at offset %d", offset+BlockHeaderSize)
		}
		block := &Block{Header: header, Compressed: payload}
		decoded, err := block.DecompressOutcomes()
		if err != nil {
			return nil, err
		}
		out = append(out, decoded...)
		offset += header.SizeIncludingHeader()
	}
	return out, nil
}

// CompressReports is a convenience wrapper that writes an entire in-memory
// table (one RawOutcome per index) to w as a sequence of blocks.
func CompressReports(w io.Writer, pairs []RawOutcome) error {
	bw := NewBlockWriter(w)
	for _, p := range pairs {
		if err := bw.Append(p); err != nil {
			return err
		}
	}
	return bw.Close()
}

// bytesReaderAt adapts an in-memory byte slice to io.ReaderAt, used by tests
// that exercise EncoderDecoder without touching the filesystem.
type bytesReaderAt struct {
	b *bytes.Reader
}

func newBytesReaderAt(b []byte) *bytesReaderAt {
	return &bytesReaderAt{b: bytes.NewReader(b)}
}

func (r *bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return r.b.ReadAt(p, off)
}
