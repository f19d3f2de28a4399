package vec

import "math"

// Vec2Float представляет 2D координаты с плавающей точкой (мировые единицы)
type Vec2Float struct {
	X, Y float64
}

// ToTile переводит мировые координаты в тайловые для заданного размера тайла
func (v Vec2Float) ToTile(tileSize int) Vec2 {
	ts := float64(tileSize)
	return Vec2{X: int(math.Floor(v.X / ts)), Y: int(math.Floor(v.Y / ts))}
}

// FromTile возвращает мировые координаты левого нижнего угла тайла
func FromTile(v Vec2, tileSize int) Vec2Float {
	return Vec2Float{X: float64(v.X * tileSize), Y: float64(v.Y * tileSize)}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}
