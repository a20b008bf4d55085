package pngfixture

import (
	"bytes"
	"compress/zlib"
	"errors"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRaster(t *testing.T) {
	row := Row()
	if len(row) != 31 {
		t.Fatalf("len(Row()) = %d, want 31", len(row))
	}
	want := append([]byte{0x00}, bytes.Repeat([]byte{0xff, 0x00, 0x00}, 10)...)
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("Row() mismatch (-want +got):\n%s", diff)
	}
	raster := Raster()
	if len(raster) != 310 {
		t.Fatalf("len(Raster()) = %d, want 310", len(raster))
	}
	if !bytes.Equal(raster, bytes.Repeat(want, 10)) {
		t.Error("Raster() is not 10 copies of Row()")
	}
}

func TestBytes(t *testing.T) {
	b := fixtureBytes(t)

	if !bytes.HasPrefix(b, []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}) {
		t.Fatalf("unexpected signature: %x", b[:8])
	}
	chunks, err := ReadChunks(b)
	if err != nil {
		t.Fatal(err)
	}
	var types []string
	for _, c := range chunks {
		types = append(types, c.Type)
		if !c.Valid() {
			t.Errorf("%s: stored crc %08x, computed %08x", c.Type, c.CRC, c.Checksum())
		}
	}
	if diff := cmp.Diff([]string{"IHDR", "IDAT", "IEND"}, types); diff != "" {
		t.Fatalf("chunk types mismatch (-want +got):\n%s", diff)
	}

	t.Run("IHDR", func(t *testing.T) {
		want := []byte{
			0x00, 0x00, 0x00, 0x0a, // width
			0x00, 0x00, 0x00, 0x0a, // height
			0x08, // bit depth
			0x02, // color type
			0x00, 0x00, 0x00,
		}
		if diff := cmp.Diff(want, chunks[0].Data); diff != "" {
			t.Errorf("IHDR mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("IDAT", func(t *testing.T) {
		zr, err := zlib.NewReader(bytes.NewReader(chunks[1].Data))
		if err != nil {
			t.Fatal(err)
		}
		raw, err := io.ReadAll(zr)
		if err != nil {
			t.Fatal(err)
		}
		if len(raw) != 10*31 {
			t.Fatalf("inflated %d bytes, want %d", len(raw), 10*31)
		}
		row := append([]byte{0x00}, bytes.Repeat([]byte{0xff, 0x00, 0x00}, 10)...)
		for i := range 10 {
			if got := raw[i*31 : (i+1)*31]; !bytes.Equal(got, row) {
				t.Errorf("row %d = %x, want %x", i, got, row)
			}
		}
	})

	t.Run("IEND", func(t *testing.T) {
		if len(chunks[2].Data) != 0 {
			t.Errorf("IEND payload length = %d, want 0", len(chunks[2].Data))
		}
		if chunks[2].CRC != 0xae426082 {
			t.Errorf("IEND crc = %08x, want ae426082", chunks[2].CRC)
		}
		if !bytes.HasSuffix(b, []byte{0, 0, 0, 0, 'I', 'E', 'N', 'D', 0xae, 0x42, 0x60, 0x82}) {
			t.Errorf("stream does not end with IEND: %x", b[len(b)-12:])
		}
	})
}

func TestBytesDecodes(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(fixtureBytes(t)))
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got.X != 10 || got.Y != 10 {
		t.Fatalf("size = %v, want 10x10", got)
	}
	for y := range 10 {
		for x := range 10 {
			r, g, b, a := img.At(x, y).RGBA()
			if r != 0xffff || g != 0 || b != 0 || a != 0xffff {
				t.Fatalf("pixel (%d,%d) = %04x %04x %04x %04x, want opaque red", x, y, r, g, b, a)
			}
		}
	}
}

func TestGenerate(t *testing.T) {
	p := filepath.Join(t.TempDir(), "test-image.jpg")
	if err := Generate(p); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, fixtureBytes(t)) {
		t.Error("written file differs from Bytes()")
	}

	if err := Generate(p); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("generating twice produced different files")
	}
}

func TestGenerateDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := Generate(DefaultPath); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "test-image.jpg")); err != nil {
		t.Errorf("test-image.jpg not created: %v", err)
	}
}

func TestGenerateTruncatesExistingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.png")
	if err := os.WriteFile(p, bytes.Repeat([]byte("x"), 4096), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Generate(p); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, fixtureBytes(t)) {
		t.Errorf("existing file was not replaced, got %d bytes", len(got))
	}
}

func TestGenerateMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	err := Generate(filepath.Join(dir, "missing", "test-image.jpg"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error should wrap fs.ErrNotExist: %v", err)
	}
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) {
		t.Errorf("error should wrap *fs.PathError: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("unexpected files created: %v", entries)
	}
}

func TestWithLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := filepath.Join(t.TempDir(), "test-image.jpg")
	if err := Generate(p, WithLogger(logger)); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if n := strings.Count(got, `msg="wrote chunk"`); n != 3 {
		t.Errorf("wrote chunk logged %d times, want 3:\n%s", n, got)
	}
	for _, typ := range []string{"IHDR", "IDAT", "IEND"} {
		if !strings.Contains(got, "type="+typ) {
			t.Errorf("no log for %s chunk:\n%s", typ, got)
		}
	}
	if !strings.Contains(got, `msg="generated fixture" path=`+p) {
		t.Errorf("missing generated fixture log:\n%s", got)
	}
}

func TestWithNilLogger(t *testing.T) {
	if _, err := New(WithLogger(nil)); err == nil {
		t.Error("expected error for nil logger")
	}
}

func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	f, err := New()
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return b
}
