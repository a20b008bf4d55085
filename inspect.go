package pngfixture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	kerrors "github.com/k1LoW/errors"
	"github.com/klauspost/compress/zlib"
)

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrUnexpectedHeader = errors.New("unexpected header")
	ErrUnexpectedRaster = errors.New("unexpected raster")
	ErrInflatedTooLarge = errors.New("inflated image data too large")
)

// maxInflatedCap bounds inflation regardless of the declared dimensions.
const maxInflatedCap = 64 << 20

// maxInflated returns the largest raster the header can describe
// (8 bytes per pixel plus a filter byte per row), capped at maxInflatedCap.
func maxInflated(h Header) int64 {
	n := uint64(h.Height) * (1 + uint64(h.Width)*8)
	if n == 0 || n > maxInflatedCap {
		return maxInflatedCap
	}
	return int64(n)
}

// Header holds the decoded IHDR fields.
type Header struct {
	Width       uint32
	Height      uint32
	BitDepth    uint8
	ColorType   uint8
	Compression uint8
	Filter      uint8
	Interlace   uint8
}

func (h Header) String() string {
	return fmt.Sprintf("width=%d height=%d bit_depth=%d color_type=%d compression=%d filter=%d interlace=%d",
		h.Width, h.Height, h.BitDepth, h.ColorType, h.Compression, h.Filter, h.Interlace)
}

// Report is the result of inspecting a PNG stream.
type Report struct {
	Chunks []*Chunk
	Header Header
	// Raw is the inflated content of all IDAT chunks.
	Raw []byte
	// Rows is Raw split into scanlines. It is only set for 8-bit truecolor images.
	Rows [][]byte
}

// Inspect parses b into a Report. Chunk checksums are recorded but not
// enforced; call Validate for that.
func Inspect(b []byte) (_ *Report, err error) {
	defer func() {
		err = kerrors.WithStack(err)
	}()
	chunks, err := ReadChunks(b)
	if err != nil {
		return nil, err
	}
	r := &Report{Chunks: chunks}
	if chunks[0].Type != ChunkTypeIHDR {
		return nil, fmt.Errorf("%w: first chunk is %s, want %s", ErrUnexpectedHeader, chunks[0].Type, ChunkTypeIHDR)
	}
	if len(chunks[0].Data) != 13 {
		return nil, fmt.Errorf("%w: IHDR length is %d, want 13", ErrUnexpectedHeader, len(chunks[0].Data))
	}
	d := chunks[0].Data
	r.Header = Header{
		Width:       binary.BigEndian.Uint32(d[0:4]),
		Height:      binary.BigEndian.Uint32(d[4:8]),
		BitDepth:    d[8],
		ColorType:   d[9],
		Compression: d[10],
		Filter:      d[11],
		Interlace:   d[12],
	}

	var idat []byte
	for _, c := range chunks {
		if c.Type == ChunkTypeIDAT {
			idat = append(idat, c.Data...)
		}
	}
	if len(idat) == 0 {
		return r, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(idat))
	if err != nil {
		return nil, fmt.Errorf("failed to inflate image data: %w", err)
	}
	defer zr.Close()
	limit := maxInflated(r.Header)
	raw, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to inflate image data: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrInflatedTooLarge, limit)
	}
	r.Raw = raw

	if r.Header.BitDepth == BitDepth && r.Header.ColorType == ColorType && r.Header.Width > 0 {
		stride := 1 + int(r.Header.Width)*3
		for len(raw) >= stride {
			r.Rows = append(r.Rows, raw[:stride])
			raw = raw[stride:]
		}
		if len(raw) > 0 {
			r.Rows = append(r.Rows, raw)
		}
	}
	return r, nil
}

// Validate checks that the report describes exactly the fixture built by this package.
func (r *Report) Validate() error {
	for _, c := range r.Chunks {
		if !c.Valid() {
			return fmt.Errorf("%w in %s chunk: stored %08x, computed %08x", ErrChecksumMismatch, c.Type, c.CRC, c.Checksum())
		}
	}
	want := Header{Width: Width, Height: Height, BitDepth: BitDepth, ColorType: ColorType}
	if r.Header != want {
		return fmt.Errorf("%w: %s", ErrUnexpectedHeader, r.Header)
	}
	if len(r.Rows) != Height {
		return fmt.Errorf("%w: %d rows, want %d", ErrUnexpectedRaster, len(r.Rows), Height)
	}
	row := Row()
	for i, got := range r.Rows {
		if !bytes.Equal(got, row) {
			return fmt.Errorf("%w: row %d differs", ErrUnexpectedRaster, i)
		}
	}
	return nil
}

func (r *Report) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "signature: %x\n", Signature)
	for _, c := range r.Chunks {
		status := "ok"
		if !c.Valid() {
			status = fmt.Sprintf("mismatch (computed %08x)", c.Checksum())
		}
		_, _ = fmt.Fprintf(&sb, "chunk %s: %s\n", c, status)
		switch c.Type {
		case ChunkTypeIHDR:
			_, _ = fmt.Fprintf(&sb, "  %s\n", r.Header)
		case ChunkTypeIDAT:
			_, _ = fmt.Fprintf(&sb, "  inflated=%d rows=%d\n", len(r.Raw), len(r.Rows))
		}
	}
	for i, row := range r.Rows {
		_, _ = fmt.Fprintf(&sb, "row %d: %s\n", i, summarizeRow(row))
	}
	return sb.String()
}

// summarizeRow renders a scanline as "filter=N" followed by run-length encoded pixels.
func summarizeRow(row []byte) string {
	if len(row) == 0 {
		return "empty"
	}
	parts := []string{fmt.Sprintf("filter=%d", row[0])}
	px := row[1:]
	for len(px) >= 3 {
		n := 1
		for len(px) >= (n+1)*3 && bytes.Equal(px[n*3:(n+1)*3], px[:3]) {
			n++
		}
		parts = append(parts, fmt.Sprintf("%x*%d", px[:3], n))
		px = px[n*3:]
	}
	if len(px) > 0 {
		parts = append(parts, fmt.Sprintf("+%x", px))
	}
	return strings.Join(parts, " ")
}
