package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/tile-world/internal/world"
	"github.com/annel0/tile-world/internal/world/tile"
)

const chunkKeyPrefix = "chunk:"

var _ world.Persister = (*BadgerPersister)(nil)

// BadgerPersister хранит чанки в BadgerDB, значения сжаты zstd.
// Ключ: "chunk:<cx>:<cy>", значение: zstd(двоичный формат чанка).
type BadgerPersister struct {
	db  *badger.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// BadgerOption настраивает badger.Options
type BadgerOption func(*badger.Options)

// InMemory держит базу только в памяти (для тестов)
func InMemory() BadgerOption {
	return func(o *badger.Options) { *o = o.WithInMemory(true) }
}

// NewBadgerPersister открывает базу в каталоге dir
func NewBadgerPersister(dir string, options ...BadgerOption) (*BadgerPersister, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil) // Отключаем логирование BadgerDB
	for _, o := range options {
		o(&opts)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}
	return &BadgerPersister{db: db, enc: enc, dec: dec}, nil
}

func chunkKey(cx, cy int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", chunkKeyPrefix, cx, cy))
}

func parseChunkKey(key []byte) (cx, cy int, ok bool) {
	rest, found := strings.CutPrefix(string(key), chunkKeyPrefix)
	if !found {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(rest, "%d:%d", &cx, &cy); err != nil {
		return 0, 0, false
	}
	return cx, cy, true
}

// Load реализует world.Persister
func (p *BadgerPersister) Load(cx, cy int) (*tile.Chunk, error) {
	var raw []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(cx, cy))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw, err = p.dec.DecodeAll(val, nil)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chunk %d,%d: %w", cx, cy, err)
	}
	return tile.DecodeBytes(raw, cx, cy)
}

// Save реализует world.Persister
func (p *BadgerPersister) Save(c *tile.Chunk) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	packed := p.enc.EncodeAll(data, nil)
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(c.X(), c.Y()), packed)
	})
}

// Delete удаляет сохранённый чанк
func (p *BadgerPersister) Delete(cx, cy int) error {
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(chunkKey(cx, cy))
	})
}

// Keys перечисляет все сохранённые чанки
func (p *BadgerPersister) Keys() ([]tile.Key, error) {
	var keys []tile.Key
	err := p.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(chunkKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if cx, cy, ok := parseChunkKey(it.Item().Key()); ok {
				keys = append(keys, tile.PackKey(cx, cy))
			}
		}
		return nil
	})
	return keys, err
}

// Close реализует world.Persister
func (p *BadgerPersister) Close() error {
	p.enc.Close()
	p.dec.Close()
	return p.db.Close()
}
