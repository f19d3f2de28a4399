package world

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/annel0/tile-world/internal/logging"
	"github.com/annel0/tile-world/internal/world/tile"
)

// Persister сохраняет и загружает чанки.
// Load возвращает nil, nil, если чанк не сохранялся.
type Persister interface {
	Load(cx, cy int) (*tile.Chunk, error)
	Save(c *tile.Chunk) error
	Close() error
}

// FilePersister хранит каждый чанк в отдельном файле <dir>/chunks/<cx>_<cy>.bin
type FilePersister struct {
	dir string
}

// NewFilePersister создаёт хранилище, заранее создавая каталог чанков
func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(filepath.Join(dir, "chunks"), 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}
	return &FilePersister{dir: dir}, nil
}

// Dir возвращает корневой каталог сохранения
func (p *FilePersister) Dir() string { return p.dir }

// ChunkPath возвращает путь файла чанка
func (p *FilePersister) ChunkPath(cx, cy int) string {
	return filepath.Join(p.dir, "chunks", fmt.Sprintf("%d_%d.bin", cx, cy))
}

// Load реализует Persister
func (p *FilePersister) Load(cx, cy int) (*tile.Chunk, error) {
	data, err := os.ReadFile(p.ChunkPath(cx, cy))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c, err := tile.DecodeBytes(data, cx, cy)
	if err != nil {
		logging.GetStorageLogger().Trace("битый файл чанка %s:\n%s", p.ChunkPath(cx, cy), logging.HexDump(data))
		return nil, err
	}
	return c, nil
}

// Save реализует Persister. Запись идёт через временный файл, чтобы не оставлять обрезанных чанков.
func (p *FilePersister) Save(c *tile.Chunk) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	path := p.ChunkPath(c.X(), c.Y())
	tmp, err := os.CreateTemp(filepath.Dir(path), ".chunk-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Close реализует Persister
func (p *FilePersister) Close() error { return nil }
