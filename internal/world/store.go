package world

import (
	"sort"

	"github.com/annel0/tile-world/internal/logging"
	"github.com/annel0/tile-world/internal/metrics"
	"github.com/annel0/tile-world/internal/world/gen"
	"github.com/annel0/tile-world/internal/world/tile"
)

// KeySet: множество ключей чанков
type KeySet map[tile.Key]struct{}

// Square возвращает ключи квадрата чанков радиуса radius вокруг (cx, cy)
func Square(cx, cy, radius int) KeySet {
	set := make(KeySet)
	for x := cx - radius; x <= cx+radius; x++ {
		for y := cy - radius; y <= cy+radius; y++ {
			set[tile.PackKey(x, y)] = struct{}{}
		}
	}
	return set
}

// ChunkStore владеет резидентными чанками.
// Чанк либо в памяти, либо сохранён и выгружен, но не то и другое одновременно.
type ChunkStore struct {
	chunks    map[tile.Key]*tile.Chunk
	generator gen.Generator
	persister Persister // nil: сохранение выключено
	metrics   *metrics.Recorder
	logger    *logging.Logger
}

// NewChunkStore создаёт хранилище; persister и m могут быть nil
func NewChunkStore(g gen.Generator, p Persister, m *metrics.Recorder) *ChunkStore {
	return &ChunkStore{
		chunks:    make(map[tile.Key]*tile.Chunk),
		generator: g,
		persister: p,
		metrics:   m,
		logger:    logging.GetStorageLogger(),
	}
}

// Persister возвращает текущее хранилище (может быть nil)
func (s *ChunkStore) Persister() Persister { return s.persister }

// SetPersister меняет хранилище; nil выключает сохранение
func (s *ChunkStore) SetPersister(p Persister) { s.persister = p }

// Len возвращает число резидентных чанков
func (s *ChunkStore) Len() int { return len(s.chunks) }

// Keys возвращает ключи резидентных чанков в порядке возрастания
func (s *ChunkStore) Keys() []tile.Key {
	keys := make([]tile.Key, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Peek возвращает резидентный чанк, не загружая его
func (s *ChunkStore) Peek(cx, cy int) (*tile.Chunk, bool) {
	c, ok := s.chunks[tile.PackKey(cx, cy)]
	return c, ok
}

// GetOrCreate возвращает резидентный чанк, иначе загружает с диска, иначе генерирует
func (s *ChunkStore) GetOrCreate(cx, cy int) *tile.Chunk {
	key := tile.PackKey(cx, cy)
	if c, ok := s.chunks[key]; ok {
		return c
	}

	if s.persister != nil {
		c, err := s.persister.Load(cx, cy)
		switch {
		case err != nil:
			// Повреждённый или нечитаемый чанк считается отсутствующим
			s.logger.Warn("чанк %d,%d не загружен, будет сгенерирован: %v", cx, cy, err)
			s.metrics.ChunkError("load")
		case c != nil:
			s.chunks[key] = c
			s.metrics.ChunkResolved(metrics.SourceLoaded)
			s.metrics.SetResident(len(s.chunks))
			return c
		}
	}

	c := tile.NewChunk(cx, cy)
	if s.generator != nil {
		s.generator.Generate(cx, cy, c)
	}
	s.chunks[key] = c
	s.metrics.ChunkResolved(metrics.SourceGenerated)
	s.metrics.SetResident(len(s.chunks))
	return c
}

// PreloadSquare делает резидентным квадрат чанков радиуса radius
func (s *ChunkStore) PreloadSquare(cx, cy, radius int) {
	if radius < 0 {
		return
	}
	for x := cx - radius; x <= cx+radius; x++ {
		for y := cy - radius; y <= cy+radius; y++ {
			s.GetOrCreate(x, y)
		}
	}
}

// HasSquareLoaded проверяет, что весь квадрат резидентен, ничего не загружая
func (s *ChunkStore) HasSquareLoaded(cx, cy, radius int) bool {
	if radius < 0 {
		return true
	}
	for x := cx - radius; x <= cx+radius; x++ {
		for y := cy - radius; y <= cy+radius; y++ {
			if _, ok := s.chunks[tile.PackKey(x, y)]; !ok {
				return false
			}
		}
	}
	return true
}

// Retain сохраняет (если включено) и выгружает все чанки вне visible.
// Чанк, который не удалось сохранить, остаётся в памяти до следующей попытки.
// Возвращает число выгруженных чанков.
func (s *ChunkStore) Retain(visible KeySet) int {
	evicted := 0
	for _, key := range s.Keys() {
		if _, keep := visible[key]; keep {
			continue
		}
		c := s.chunks[key]
		if s.persister != nil && !s.save(c) {
			continue
		}
		delete(s.chunks, key)
		evicted++
		s.metrics.ChunkEvicted()
	}
	if evicted > 0 {
		s.logger.Debug("выгружено чанков: %d, в памяти: %d", evicted, len(s.chunks))
		s.metrics.SetResident(len(s.chunks))
	}
	return evicted
}

// Flush сохраняет все резидентные чанки, не выгружая их.
// Возвращает число успешно сохранённых.
func (s *ChunkStore) Flush() int {
	if s.persister == nil {
		return 0
	}
	saved := 0
	for _, key := range s.Keys() {
		if s.save(s.chunks[key]) {
			saved++
		}
	}
	return saved
}

func (s *ChunkStore) save(c *tile.Chunk) bool {
	if err := s.persister.Save(c); err != nil {
		s.logger.Warn("чанк %d,%d не сохранён: %v", c.X(), c.Y(), err)
		s.metrics.ChunkError("save")
		return false
	}
	s.metrics.ChunkSaved()
	return true
}
