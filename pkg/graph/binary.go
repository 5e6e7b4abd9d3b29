package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes = "GRACOLVL"
	version    = uint32(1)
	maxNodes   = 1 << 30 // node-index cap, leaving the top bits free for status/validity tags
	maxEdges   = 1 << 31
)

// fileHeader is the binary header written ahead of a Level's CSR arrays.
type fileHeader struct {
	Magic [8]byte
	Version uint32
	N       uint32
	M       uint32
}

// WriteLevel serializes l to path: a magic-bytes/version header, the
// three CSR arrays, and a trailing CRC32 over everything that precedes
// it. Writes to a temp file and renames into place so a reader never
// observes a partially-written file.
func WriteLevel(path string, l *Level) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("graph: create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := fileHeader{Version: version, N: l.N, M: l.M}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("graph: write header: %w", err)
	}
	if err := writeUint32Slice(w, l.EdgeOffset); err != nil {
		return fmt.Errorf("graph: write EdgeOffset: %w", err)
	}
	if err := writeUint32Slice(w, l.Edges); err != nil {
		return fmt.Errorf("graph: write Edges: %w", err)
	}
	if err := writeUint32Slice(w, l.EdgeWeights); err != nil {
		return fmt.Errorf("graph: write EdgeWeights: %w", err)
	}

	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("graph: write CRC32: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("graph: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("graph: rename: %w", err)
	}
	return nil
}

// ReadLevel deserializes a Level written by WriteLevel, validating the
// CRC32 trailer and the CSR invariants before returning it.
func ReadLevel(path string) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graph: open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("graph: read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("graph: invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("graph: unsupported version: %d", hdr.Version)
	}
	if hdr.N > maxNodes {
		return nil, fmt.Errorf("graph: N %d exceeds limit %d", hdr.N, maxNodes)
	}
	if hdr.M > maxEdges {
		return nil, fmt.Errorf("graph: M %d exceeds limit %d", hdr.M, maxEdges)
	}

	l := &Level{N: hdr.N, M: hdr.M}
	if l.EdgeOffset, err = readUint32Slice(r, int(hdr.N)); err != nil {
		return nil, fmt.Errorf("graph: read EdgeOffset: %w", err)
	}
	if l.Edges, err = readUint32Slice(r, int(hdr.M)); err != nil {
		return nil, fmt.Errorf("graph: read Edges: %w", err)
	}
	if l.EdgeWeights, err = readUint32Slice(r, int(hdr.M)); err != nil {
		return nil, fmt.Errorf("graph: read EdgeWeights: %w", err)
	}

	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("graph: read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("graph: CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := ValidateCSR(l); err != nil {
		return nil, fmt.Errorf("graph: invalid CSR: %w", err)
	}
	return l, nil
}

// ValidateCSR checks the CSR invariants: EdgeOffset has length N and is
// non-decreasing, every edge target is in range, and edges are
// bidirectional with matching weight and free of self-loops.
func ValidateCSR(l *Level) error {
	if uint32(len(l.EdgeOffset)) != l.N {
		return fmt.Errorf("EdgeOffset length %d != N %d", len(l.EdgeOffset), l.N)
	}
	if uint32(len(l.Edges)) != l.M || uint32(len(l.EdgeWeights)) != l.M {
		return fmt.Errorf("Edges/EdgeWeights length mismatch with M=%d", l.M)
	}
	for i := uint32(1); i < l.N; i++ {
		if l.EdgeOffset[i] < l.EdgeOffset[i-1] {
			return fmt.Errorf("EdgeOffset not monotonic at %d: %d < %d", i, l.EdgeOffset[i], l.EdgeOffset[i-1])
		}
	}
	for u := uint32(0); u < l.N; u++ {
		start, end := l.EdgeRange(u)
		for e := start; e < end; e++ {
			v := l.Edges[e]
			if v >= l.N {
				return fmt.Errorf("edge-ref %d: target %d >= N %d", e, v, l.N)
			}
			if v == u {
				return fmt.Errorf("edge-ref %d: self-loop at node %d", e, u)
			}
			if !hasReciprocal(l, v, u, l.EdgeWeights[e]) {
				return fmt.Errorf("edge %d->%d has no reciprocal %d->%d", u, v, v, u)
			}
		}
	}
	return nil
}

func hasReciprocal(l *Level, from, to, weight uint32) bool {
	start, end := l.EdgeRange(from)
	for e := start; e < end; e++ {
		if l.Edges[e] == to && l.EdgeWeights[e] == weight {
			return true
		}
	}
	return false
}

// Zero-copy []uint32 <-> []byte I/O helpers.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
