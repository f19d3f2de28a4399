package gen

import "github.com/annel0/tile-world/internal/world/tile"

// Flat заполняет глобальную строку 0 тайлом 1, остальное: воздух
type Flat struct {
	palette map[tile.ID]string
}

// NewFlat создаёт плоский генератор; palette может быть nil
func NewFlat(palette map[string]string) *Flat {
	return &Flat{palette: mergePalette(palette)}
}

func (f *Flat) Kind() Kind { return KindFlat }

// Generate реализует Generator
func (f *Flat) Generate(cx, cy int, c *tile.Chunk) {
	for x := 0; x < tile.Size; x++ {
		for y := 0; y < tile.Size; y++ {
			if cy*tile.Size+y == 0 {
				c.Set(x, y, TileGrass)
			} else {
				c.Set(x, y, tile.AirID)
			}
		}
	}
}

// Descriptor реализует Generator
func (f *Flat) Descriptor() Descriptor {
	return Descriptor{Type: KindFlat.String(), Palette: encodePalette(f.palette)}
}

// Palette возвращает копию палитры
func (f *Flat) Palette() map[tile.ID]string { return copyPalette(f.palette) }
