package gen

import (
	"math"

	"github.com/annel0/tile-world/internal/util"
	"github.com/annel0/tile-world/internal/world/tile"
)

// HillsParams: параметры холмистого генератора на фрактальном value noise
type HillsParams struct {
	Amplitude      float64 // Масштаб высоты в тайлах
	VerticalOffset float64 // Сдвиг поверхности в тайлах
	Seed           int64
	Octaves        int
	BaseFrequency  float64 // Циклов на тайл
	Lacunarity     float64
	Persistence    float64
}

// DefaultHillsParams возвращает параметры пологих холмов по умолчанию
func DefaultHillsParams() HillsParams {
	return HillsParams{
		Amplitude:      6,
		VerticalOffset: -4,
		Seed:           1337,
		Octaves:        4,
		BaseFrequency:  1.0 / 48.0,
		Lacunarity:     2,
		Persistence:    0.5,
	}
}

// normalize ограничивает параметры допустимыми диапазонами
func (p HillsParams) normalize() HillsParams {
	if p.Octaves < 1 {
		p.Octaves = 1
	}
	p.BaseFrequency = math.Max(1e-6, p.BaseFrequency)
	p.Lacunarity = math.Max(1, p.Lacunarity)
	p.Persistence = math.Max(0, math.Min(1, p.Persistence))
	return p
}

// SmoothHills генерирует холмы: трава на поверхности, 4-6 слоёв земли, ниже камень
type SmoothHills struct {
	params  HillsParams
	noise   util.FBM
	palette map[tile.ID]string
}

// NewSmoothHills создаёт генератор с указанными параметрами
func NewSmoothHills(p HillsParams, palette map[string]string) *SmoothHills {
	p = p.normalize()
	return &SmoothHills{
		params: p,
		noise: util.FBM{
			Seed:          p.Seed,
			Octaves:       p.Octaves,
			BaseFrequency: p.BaseFrequency,
			Lacunarity:    p.Lacunarity,
			Persistence:   p.Persistence,
		},
		palette: mergePalette(palette),
	}
}

func newSmoothHillsFromDescriptor(d *Descriptor) *SmoothHills {
	def := DefaultHillsParams()
	freq := def.BaseFrequency
	if d.BaseFrequency != nil {
		freq = *d.BaseFrequency
	} else if d.Wavelength != nil {
		freq = 1.0 / math.Max(1, *d.Wavelength)
	}
	return NewSmoothHills(HillsParams{
		Amplitude:      float64Or(d.Amplitude, def.Amplitude),
		VerticalOffset: float64Or(d.VerticalOffset, def.VerticalOffset),
		Seed:           int64Or(d.Seed, def.Seed),
		Octaves:        intOr(d.Octaves, def.Octaves),
		BaseFrequency:  freq,
		Lacunarity:     float64Or(d.Lacunarity, def.Lacunarity),
		Persistence:    float64Or(d.Persistence, def.Persistence),
	}, d.Palette)
}

func (g *SmoothHills) Kind() Kind { return KindSmoothHills }

// Params возвращает нормализованные параметры
func (g *SmoothHills) Params() HillsParams { return g.params }

// SurfaceHeight возвращает глобальную строку поверхности для столбца gx
func (g *SmoothHills) SurfaceHeight(gx int) int {
	n := g.noise.Sample(float64(gx))
	return int(math.Floor(n*g.params.Amplitude + g.params.VerticalOffset))
}

// Generate реализует Generator
func (g *SmoothHills) Generate(cx, cy int, c *tile.Chunk) {
	fillLayered(cx, cy, c, g.SurfaceHeight, func(gx int) int {
		return dirtDepth(g.params.Seed, gx)
	})
}

// Descriptor реализует Generator
func (g *SmoothHills) Descriptor() Descriptor {
	p := g.params
	return Descriptor{
		Type:           KindSmoothHills.String(),
		Palette:        encodePalette(g.palette),
		Amplitude:      ptr(p.Amplitude),
		VerticalOffset: ptr(p.VerticalOffset),
		Seed:           ptr(p.Seed),
		Octaves:        ptr(p.Octaves),
		BaseFrequency:  ptr(p.BaseFrequency),
		Lacunarity:     ptr(p.Lacunarity),
		Persistence:    ptr(p.Persistence),
	}
}

// Palette возвращает копию палитры
func (g *SmoothHills) Palette() map[tile.ID]string { return copyPalette(g.palette) }

// dirtDepth возвращает толщину слоя земли: 4 плюс детерминированный разброс 0..2
func dirtDepth(seed int64, gx int) int {
	jitter := int((util.Mix64(seed, int64(gx)*1315423911) >> 61) & 0x3)
	if jitter > 2 {
		jitter = 2
	}
	return 4 + jitter
}
