package physics

import "math"

// Epsilon сужает AABB внутрь, чтобы касание границы тайла не считалось пересечением
const Epsilon = 0.001

// Grid: сетка тайлов, с которой сталкиваются тела
type Grid interface {
	TileSize() int
	IsSolidTile(tx, ty int) bool
}

// GridFunc адаптирует функцию к интерфейсу Grid
type GridFunc struct {
	Size  int
	Solid func(tx, ty int) bool
}

func (g GridFunc) TileSize() int               { return g.Size }
func (g GridFunc) IsSolidTile(tx, ty int) bool { return g.Solid(tx, ty) }

// TileIndex переводит мировую координату в индекс тайла
func TileIndex(w float64, tileSize int) int {
	return int(math.Floor(w / float64(tileSize)))
}

// TileSpan возвращает включительный диапазон тайлов, покрываемых отрезком [min, min+size)
func TileSpan(min, size float64, tileSize int) (lo, hi int) {
	return TileIndex(min+Epsilon, tileSize), TileIndex(min+size-Epsilon, tileSize)
}

// Collides проверяет, пересекает ли AABB хотя бы один твёрдый тайл
func Collides(g Grid, x, y, w, h float64) bool {
	ts := g.TileSize()
	minTx, maxTx := TileSpan(x, w, ts)
	minTy, maxTy := TileSpan(y, h, ts)
	for tx := minTx; tx <= maxTx; tx++ {
		for ty := minTy; ty <= maxTy; ty++ {
			if g.IsSolidTile(tx, ty) {
				return true
			}
		}
	}
	return false
}

// CanMoveToPosition проверяет, помещается ли тело размером w x h в указанную позицию
func CanMoveToPosition(g Grid, x, y, w, h float64) bool {
	return !Collides(g, x, y, w, h)
}
