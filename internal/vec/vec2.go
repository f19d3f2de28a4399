package vec

import "math"

// ChunkSize: сторона чанка в тайлах (8x8)
const ChunkSize = 8

// Vec2 представляет 2D координаты в тайлах
type Vec2 struct {
	X, Y int
}

// ToChunkCoords преобразует тайловые координаты в координаты чанка
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: FloorDiv(v.X, ChunkSize), Y: FloorDiv(v.Y, ChunkSize)}
}

// LocalInChunk возвращает локальные координаты внутри чанка (0..7)
func (v Vec2) LocalInChunk() Vec2 {
	return Vec2{X: Mod(v.X, ChunkSize), Y: Mod(v.Y, ChunkSize)}
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ManhattanTo возвращает манхэттенское расстояние
func (v Vec2) ManhattanTo(other Vec2) int {
	return AbsInt(v.X-other.X) + AbsInt(v.Y-other.Y)
}

// FloorDiv делит с округлением к минус бесконечности (b > 0)
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod возвращает неотрицательный остаток (0..b-1) для b > 0
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// AbsInt возвращает модуль целого
func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
