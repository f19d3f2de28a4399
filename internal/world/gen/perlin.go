package gen

import (
	"math"

	"github.com/annel0/tile-world/internal/util"
	"github.com/annel0/tile-world/internal/world/tile"
)

// PerlinParams: параметры холмов на шуме Перлина
type PerlinParams struct {
	Amplitude      float64
	VerticalOffset float64
	Seed           int64
	Octaves        int
	Frequency      float64
	Alpha          float64 // Сглаживание шума
	Beta           float64 // Частота шума
}

// DefaultPerlinParams возвращает параметры по умолчанию
func DefaultPerlinParams() PerlinParams {
	return PerlinParams{
		Amplitude:      8,
		VerticalOffset: -4,
		Seed:           1337,
		Octaves:        3,
		Frequency:      0.05,
		Alpha:          2,
		Beta:           2,
	}
}

// PerlinHills генерирует холмы по одномерному шуму Перлина.
// Таблицы перестановок строятся один раз при создании, дальше генерация чистая.
type PerlinHills struct {
	params  PerlinParams
	noise   *util.PerlinNoise
	palette map[tile.ID]string
}

// NewPerlinHills создаёт генератор с указанными параметрами
func NewPerlinHills(p PerlinParams, palette map[string]string) *PerlinHills {
	if p.Octaves < 1 {
		p.Octaves = 1
	}
	p.Frequency = math.Max(1e-6, p.Frequency)
	return &PerlinHills{
		params:  p,
		noise:   util.NewPerlinNoise(p.Seed, p.Alpha, p.Beta, int32(p.Octaves)),
		palette: mergePalette(palette),
	}
}

func newPerlinHillsFromDescriptor(d *Descriptor) *PerlinHills {
	def := DefaultPerlinParams()
	return NewPerlinHills(PerlinParams{
		Amplitude:      float64Or(d.Amplitude, def.Amplitude),
		VerticalOffset: float64Or(d.VerticalOffset, def.VerticalOffset),
		Seed:           int64Or(d.Seed, def.Seed),
		Octaves:        intOr(d.Octaves, def.Octaves),
		Frequency:      float64Or(d.BaseFrequency, def.Frequency),
		Alpha:          float64Or(d.Alpha, def.Alpha),
		Beta:           float64Or(d.Beta, def.Beta),
	}, d.Palette)
}

func (g *PerlinHills) Kind() Kind { return KindPerlinHills }

// SurfaceHeight возвращает глобальную строку поверхности для столбца gx
func (g *PerlinHills) SurfaceHeight(gx int) int {
	n := g.noise.Noise1D(float64(gx)*g.params.Frequency)*2 - 1
	return int(math.Floor(n*g.params.Amplitude + g.params.VerticalOffset))
}

// Generate реализует Generator
func (g *PerlinHills) Generate(cx, cy int, c *tile.Chunk) {
	fillLayered(cx, cy, c, g.SurfaceHeight, func(gx int) int {
		return dirtDepth(g.params.Seed, gx)
	})
}

// Descriptor реализует Generator
func (g *PerlinHills) Descriptor() Descriptor {
	p := g.params
	return Descriptor{
		Type:           KindPerlinHills.String(),
		Palette:        encodePalette(g.palette),
		Amplitude:      ptr(p.Amplitude),
		VerticalOffset: ptr(p.VerticalOffset),
		Seed:           ptr(p.Seed),
		Octaves:        ptr(p.Octaves),
		BaseFrequency:  ptr(p.Frequency),
		Alpha:          ptr(p.Alpha),
		Beta:           ptr(p.Beta),
	}
}

// Palette возвращает копию палитры
func (g *PerlinHills) Palette() map[tile.ID]string { return copyPalette(g.palette) }
