package pngfixture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/k1LoW/errors"
	"github.com/klauspost/compress/zlib"
)

const (
	// DefaultPath is the output path used when none is given.
	// The extension is .jpg although the content is PNG.
	DefaultPath = "test-image.jpg"

	Width     = 10
	Height    = 10
	BitDepth  = 8
	ColorType = 2 // truecolor, no alpha

	filterNone = 0
)

// Red is the RGB value of every pixel in the fixture.
var Red = [3]byte{0xff, 0x00, 0x00}

type Fixture struct {
	logger *slog.Logger
}

type Option func(*Fixture) error

func WithLogger(logger *slog.Logger) Option {
	return func(f *Fixture) error {
		if logger == nil {
			return fmt.Errorf("logger is nil")
		}
		f.logger = logger
		return nil
	}
}

// New creates a Fixture.
func New(opts ...Option) (_ *Fixture, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	f := &Fixture{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Generate writes the fixture to path.
func Generate(path string, opts ...Option) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	f, err := New(opts...)
	if err != nil {
		return err
	}
	return f.WriteFile(path)
}

// Bytes builds the complete PNG stream: signature, IHDR, IDAT and IEND.
func (f *Fixture) Bytes() (_ []byte, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	idat, err := compress(Raster())
	if err != nil {
		return nil, err
	}
	b := make([]byte, 0, len(Signature)+3*12+13+len(idat))
	b = append(b, Signature...)
	for _, c := range []struct {
		typ  string
		data []byte
	}{
		{ChunkTypeIHDR, header()},
		{ChunkTypeIDAT, idat},
		{ChunkTypeIEND, nil},
	} {
		b = AppendChunk(b, c.typ, c.data)
		f.logger.Debug("wrote chunk", slog.String("type", c.typ), slog.Int("length", len(c.data)))
	}
	return b, nil
}

// WriteFile writes the fixture to path with a single write call.
// The file is created or truncated; its parent directory must exist.
func (f *Fixture) WriteFile(path string) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	b, err := f.Bytes()
	if err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if _, err := file.Write(b); err != nil {
		return err
	}
	f.logger.Info("generated fixture", slog.String("path", path), slog.Int("size", len(b)))
	return nil
}

// Row returns one scanline: the filter byte followed by Width red pixels.
func Row() []byte {
	row := make([]byte, 0, 1+Width*3)
	row = append(row, filterNone)
	for range Width {
		row = append(row, Red[:]...)
	}
	return row
}

// Raster returns the uncompressed image data, Height copies of Row.
func Raster() []byte {
	return bytes.Repeat(Row(), Height)
}

func header() []byte {
	b := make([]byte, 0, 13)
	b = binary.BigEndian.AppendUint32(b, Width)
	b = binary.BigEndian.AppendUint32(b, Height)
	// compression, filter and interlace methods are all 0
	return append(b, BitDepth, ColorType, 0, 0, 0)
}

func compress(raw []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := zlib.NewWriter(buf)
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("failed to compress image data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress image data: %w", err)
	}
	return buf.Bytes(), nil
}
