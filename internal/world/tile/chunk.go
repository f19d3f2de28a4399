package tile

import "github.com/annel0/tile-world/internal/vec"

// Size: сторона чанка в тайлах
const Size = vec.ChunkSize

// Chunk представляет участок мира размером 8x8 тайлов.
// Координаты неизменны после создания.
type Chunk struct {
	cx, cy int
	tiles  [Size][Size]Tile // tiles[x][y]
}

// NewChunk создаёт чанк, заполненный воздухом
func NewChunk(cx, cy int) *Chunk {
	return &Chunk{cx: cx, cy: cy}
}

// X возвращает координату чанка по X
func (c *Chunk) X() int { return c.cx }

// Y возвращает координату чанка по Y
func (c *Chunk) Y() int { return c.cy }

// Key возвращает упакованный ключ чанка
func (c *Chunk) Key() Key { return PackKey(c.cx, c.cy) }

// Get возвращает ID тайла по локальным координатам
func (c *Chunk) Get(x, y int) ID {
	return c.tiles[x][y].id
}

// Set устанавливает ID тайла по локальным координатам
func (c *Chunk) Set(x, y int, id ID) {
	c.tiles[x][y].SetID(id)
}

// Tile возвращает указатель на тайл для изменения на месте
func (c *Chunk) Tile(x, y int) *Tile {
	return &c.tiles[x][y]
}

// SetTile заменяет тайл целиком
func (c *Chunk) SetTile(x, y int, t Tile) {
	c.tiles[x][y] = t
}

// Fill заполняет весь чанк одним ID
func (c *Chunk) Fill(id ID) {
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			c.tiles[x][y].SetID(id)
		}
	}
}

// IDs возвращает копию идентификаторов в порядке [x][y]
func (c *Chunk) IDs() [Size][Size]ID {
	var out [Size][Size]ID
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			out[x][y] = c.tiles[x][y].id
		}
	}
	return out
}
