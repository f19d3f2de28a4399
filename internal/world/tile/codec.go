package tile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Формат файла чанка (little-endian):
// magic, version, cx, cy, затем 64 ID тайлов (x внешний цикл, y внутренний).
const (
	Magic         uint32 = 0x54434831 // 'TCH1'
	FormatVersion uint32 = 1

	headerInts  = 4
	EncodedSize = (headerInts + Size*Size) * 4
)

var (
	ErrBadMagic      = errors.New("chunk: bad magic")
	ErrBadVersion    = errors.New("chunk: unsupported version")
	ErrCoordMismatch = errors.New("chunk: coordinate mismatch")
)

// MarshalBinary кодирует чанк в фиксированный бинарный формат
func (c *Chunk) MarshalBinary() ([]byte, error) {
	buf := make([]byte, EncodedSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], Magic)
	le.PutUint32(buf[4:], FormatVersion)
	le.PutUint32(buf[8:], uint32(int32(c.cx)))
	le.PutUint32(buf[12:], uint32(int32(c.cy)))

	off := headerInts * 4
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			le.PutUint32(buf[off:], uint32(c.tiles[x][y].id))
			off += 4
		}
	}
	return buf, nil
}

// Encode записывает чанк в w
func Encode(w io.Writer, c *Chunk) error {
	data, _ := c.MarshalBinary()
	_, err := w.Write(data)
	return err
}

// Decode читает чанк из r и проверяет, что он принадлежит координатам (cx, cy)
func Decode(r io.Reader, cx, cy int) (*Chunk, error) {
	buf := make([]byte, EncodedSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("chunk %d,%d: %w", cx, cy, err)
	}
	return DecodeBytes(buf, cx, cy)
}

// DecodeBytes разбирает уже прочитанные байты чанка
func DecodeBytes(buf []byte, cx, cy int) (*Chunk, error) {
	if len(buf) < EncodedSize {
		return nil, fmt.Errorf("chunk %d,%d: %w", cx, cy, io.ErrUnexpectedEOF)
	}
	le := binary.LittleEndian
	if le.Uint32(buf[0:]) != Magic {
		return nil, ErrBadMagic
	}
	if le.Uint32(buf[4:]) != FormatVersion {
		return nil, ErrBadVersion
	}
	fileCx := int(int32(le.Uint32(buf[8:])))
	fileCy := int(int32(le.Uint32(buf[12:])))
	if fileCx != cx || fileCy != cy {
		return nil, fmt.Errorf("%w: file has %d,%d, want %d,%d", ErrCoordMismatch, fileCx, fileCy, cx, cy)
	}

	c := NewChunk(cx, cy)
	off := headerInts * 4
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			c.tiles[x][y].id = ID(le.Uint32(buf[off:]))
			off += 4
		}
	}
	return c, nil
}
