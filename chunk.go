package pngfixture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

const (
	ChunkTypeIHDR = "IHDR"
	ChunkTypeIDAT = "IDAT"
	ChunkTypeIEND = "IEND"
)

// Signature is the fixed 8-byte sequence every PNG stream starts with.
var Signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

var (
	ErrInvalidSignature = errors.New("invalid PNG signature")
	ErrTruncated        = errors.New("truncated chunk")
	ErrMissingIEND      = errors.New("missing IEND chunk")
	ErrTrailingData     = errors.New("trailing data after IEND chunk")
)

// Chunk is one length/type/payload/CRC block of a PNG stream.
type Chunk struct {
	Type string
	Data []byte
	CRC  uint32 // CRC as stored in the stream
}

// Checksum computes the CRC-32 of the chunk type followed by its payload.
func (c *Chunk) Checksum() uint32 {
	return chunkChecksum(c.Type, c.Data)
}

// Valid reports whether the stored CRC matches the computed one.
func (c *Chunk) Valid() bool {
	return c.CRC == c.Checksum()
}

func (c *Chunk) String() string {
	return fmt.Sprintf("%s length=%d crc=%08x", c.Type, len(c.Data), c.CRC)
}

// AppendChunk appends an encoded chunk to b and returns the extended buffer.
func AppendChunk(b []byte, typ string, data []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(data)))
	b = append(b, typ...)
	b = append(b, data...)
	return binary.BigEndian.AppendUint32(b, chunkChecksum(typ, data))
}

// ReadChunks splits a PNG stream into its chunks, up to and including IEND.
// Checksums are not verified here; see Chunk.Valid.
func ReadChunks(b []byte) ([]*Chunk, error) {
	if !bytes.HasPrefix(b, Signature) {
		return nil, ErrInvalidSignature
	}
	b = b[len(Signature):]
	var chunks []*Chunk
	for len(b) > 0 {
		if len(b) < 12 {
			return nil, fmt.Errorf("%w: %d bytes left, need at least 12", ErrTruncated, len(b))
		}
		n := binary.BigEndian.Uint32(b[:4])
		typ := string(b[4:8])
		if uint64(len(b)-12) < uint64(n) {
			return nil, fmt.Errorf("%w: %s declares %d bytes, %d available", ErrTruncated, typ, n, len(b)-12)
		}
		data := b[8 : 8+n]
		c := &Chunk{
			Type: typ,
			Data: data,
			CRC:  binary.BigEndian.Uint32(b[8+n : 12+n]),
		}
		chunks = append(chunks, c)
		b = b[12+n:]
		if typ == ChunkTypeIEND {
			if len(b) > 0 {
				return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, len(b))
			}
			return chunks, nil
		}
	}
	return nil, ErrMissingIEND
}

func chunkChecksum(typ string, data []byte) uint32 {
	h := crc32.NewIEEE()
	_, _ = h.Write([]byte(typ))
	_, _ = h.Write(data)
	return h.Sum32()
}
