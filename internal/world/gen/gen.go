// Package gen содержит детерминированные генераторы чанков.
// Каждый генератор: чистая функция от (параметры, координаты чанка).
package gen

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/annel0/tile-world/internal/world/tile"
)

// Стандартные ID тайлов палитры
const (
	TileGrass tile.ID = 1
	TileDirt  tile.ID = 2
	TileStone tile.ID = 3
)

// Kind: закрытое перечисление видов генераторов
type Kind int

const (
	KindFlat Kind = iota
	KindSmoothHills
	KindPerlinHills
)

// String возвращает тег типа для дескриптора
func (k Kind) String() string {
	switch k {
	case KindSmoothHills:
		return "smooth_hills"
	case KindPerlinHills:
		return "perlin_hills"
	default:
		return "flat_bottom"
	}
}

// ParseKind разбирает тег типа с учётом устаревших псевдонимов
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "flat_bottom", "flatbottom", "flat":
		return KindFlat, true
	case "smooth_hills", "smoothrollinghills", "smooth_rolling_hills":
		return KindSmoothHills, true
	case "perlin_hills", "perlinhills":
		return KindPerlinHills, true
	}
	return KindFlat, false
}

// Generator заполняет чанк по его координатам
type Generator interface {
	Kind() Kind
	Generate(cx, cy int, c *tile.Chunk)
	Descriptor() Descriptor
	Palette() map[tile.ID]string
}

// DefaultPalette возвращает палитру по умолчанию (1 трава, 2 земля, 3 камень)
func DefaultPalette() map[tile.ID]string {
	return map[tile.ID]string{
		TileGrass: "tiles:grass",
		TileDirt:  "tiles:dirt",
		TileStone: "tiles:stone",
	}
}

// mergePalette накладывает палитру из дескриптора поверх стандартной.
// Нечисловые ключи и пустые значения пропускаются.
func mergePalette(raw map[string]string) map[tile.ID]string {
	pal := DefaultPalette()
	for key, loc := range raw {
		id, err := strconv.ParseUint(key, 10, 32)
		if err != nil || loc == "" {
			continue
		}
		pal[tile.ID(id)] = loc
	}
	return pal
}

func encodePalette(pal map[tile.ID]string) map[string]string {
	out := make(map[string]string, len(pal))
	for id, loc := range pal {
		out[strconv.FormatUint(uint64(id), 10)] = loc
	}
	return out
}

func copyPalette(pal map[tile.ID]string) map[tile.ID]string {
	out := make(map[tile.ID]string, len(pal))
	for id, loc := range pal {
		out[id] = loc
	}
	return out
}

// FromDescriptor строит генератор по дескриптору.
// Неизвестный тип даёт плоский генератор, а не ошибку.
func FromDescriptor(d *Descriptor) Generator {
	if d == nil {
		return NewFlat(nil)
	}
	kind, _ := ParseKind(d.Type)
	switch kind {
	case KindSmoothHills:
		return newSmoothHillsFromDescriptor(d)
	case KindPerlinHills:
		return newPerlinHillsFromDescriptor(d)
	default:
		return NewFlat(d.Palette)
	}
}

// FromJSON разбирает дескриптор и строит генератор.
// Повреждённый JSON также приводит к плоскому генератору.
func FromJSON(data []byte) Generator {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return NewFlat(nil)
	}
	return FromDescriptor(&d)
}

// fillLayered раскладывает слои трава/земля/камень по высоте столбца.
// Ось Y направлена вверх: всё ниже поверхности: грунт.
func fillLayered(cx, cy int, c *tile.Chunk, height func(gx int) int, dirtDepth func(gx int) int) {
	for lx := 0; lx < tile.Size; lx++ {
		gx := cx*tile.Size + lx
		h := height(gx)
		maxDirt := dirtDepth(gx)
		for ly := 0; ly < tile.Size; ly++ {
			gy := cy*tile.Size + ly
			switch {
			case gy == h:
				c.Set(lx, ly, TileGrass)
			case gy < h:
				if depth := h - gy; depth <= maxDirt {
					c.Set(lx, ly, TileDirt)
				} else {
					c.Set(lx, ly, TileStone)
				}
			default:
				c.Set(lx, ly, tile.AirID)
			}
		}
	}
}
