// Package pathfind реализует A* по тайловой сетке с учётом гравитации и высоты прыжка.
package pathfind

import (
	"math"

	"github.com/annel0/tile-world/internal/physics"
	"github.com/annel0/tile-world/internal/vec"
)

const (
	// MaxExpansions ограничивает число раскрытых узлов за один поиск
	MaxExpansions = 5000

	fallScanDepth = 8
	maxUpCap      = 3 // Абсолютный предел подъёма в тайлах
	maxUpTiles    = 8
	upPenalty     = 0.25
)

// Grid: сетка, по которой ищется путь
type Grid = physics.Grid

// cell: клетка поиска в тайловых координатах
type cell = vec.Vec2

// JumpTiles переводит высоту прыжка в тайлы.
// Неположительная или бесконечная высота означает «не задана» и даёт предел по умолчанию.
// Заданная высота меньше тайла запрещает подъём.
func JumpTiles(maxJumpHeight float64, tileSize int) int {
	if maxJumpHeight <= 0 || math.IsInf(maxJumpHeight, 0) || math.IsNaN(maxJumpHeight) {
		return maxUpCap
	}
	n := int(math.Floor(maxJumpHeight / float64(tileSize)))
	if n > maxUpTiles {
		return maxUpCap
	}
	if n > maxUpCap {
		n = maxUpCap
	}
	return n
}

// Searcher выполняет поиск пути для тела заданного размера
type Searcher struct {
	grid          Grid
	ts            int
	width, height float64
	maxUp         int
}

// NewSearcher создаёт поисковик для сущности размером width x height
func NewSearcher(g Grid, width, height, maxJumpHeight float64) *Searcher {
	ts := g.TileSize()
	return &Searcher{
		grid:   g,
		ts:     ts,
		width:  width,
		height: height,
		maxUp:  JumpTiles(maxJumpHeight, ts),
	}
}

func (s *Searcher) solidAtWorld(wx, wy float64) bool {
	return s.grid.IsSolidTile(physics.TileIndex(wx, s.ts), physics.TileIndex(wy, s.ts))
}

// Fits проверяет, помещается ли тело в клетку (без требования опоры)
func (s *Searcher) Fits(tx, ty int) bool {
	return physics.CanMoveToPosition(s.grid, float64(tx*s.ts), float64(ty*s.ts), s.width, s.height)
}

// Standable проверяет, что тело помещается и под ногами есть твёрдый тайл
func (s *Searcher) Standable(tx, ty int) bool {
	if !s.Fits(tx, ty) {
		return false
	}
	wx := float64(tx * s.ts)
	wy := float64(ty*s.ts) - 1 // чуть ниже ног
	ex := wx + s.width
	step := math.Min(float64(s.ts), s.width)
	if step > 0 {
		for x := wx; x < ex; x += step {
			if s.solidAtWorld(x+0.5, wy) {
				return true
			}
		}
	}
	return s.solidAtWorld(ex-0.5, wy)
}

// fallLanding ищет первую клетку с опорой ниже (tx, startTy)
func (s *Searcher) fallLanding(tx, startTy int) (int, bool) {
	for dy := 1; dy <= fallScanDepth; dy++ {
		ty := startTy - dy
		if s.Standable(tx, ty) {
			return ty, true
		}
		if !s.Fits(tx, ty) {
			return 0, false
		}
	}
	return 0, false
}

// neighbors генерирует переходы: шаг в сторону или падение, прыжок вверх, шаг вниз
func (s *Searcher) neighbors(c cell) []cell {
	result := make([]cell, 0, 8)

	// В воздухе единственный переход: падение
	if !s.Standable(c.X, c.Y) {
		if land, ok := s.fallLanding(c.X, c.Y); ok {
			result = append(result, cell{X: c.X, Y: land})
		}
		return result
	}

	for _, side := range sideSteps {
		n := c.Add(side)
		if s.Standable(n.X, n.Y) {
			result = append(result, n)
		} else if s.Fits(n.X, n.Y) {
			if land, ok := s.fallLanding(n.X, n.Y); ok {
				result = append(result, cell{X: n.X, Y: land})
			}
		}
	}

	// Standable уже включает Fits
jump:
	for j := 1; j <= s.maxUp; j++ {
		for _, off := range jumpSteps {
			n := c.Add(off).Add(cell{Y: j})
			if s.Standable(n.X, n.Y) {
				result = append(result, n)
				break jump
			}
		}
	}

	if down := c.Add(cell{Y: -1}); s.Standable(down.X, down.Y) {
		result = append(result, down)
	}
	return result
}

var (
	sideSteps = [2]cell{{X: -1}, {X: 1}}
	jumpSteps = [3]cell{{}, {X: -1}, {X: 1}}
)

func heuristic(a, b cell) float64 {
	return float64(a.ManhattanTo(b))
}

func moveCost(a, b cell) float64 {
	cost := float64(a.ManhattanTo(b))
	if b.Y > a.Y {
		cost += upPenalty * float64(b.Y-a.Y)
	}
	return cost
}

// Find ищет путь между мировыми точками.
// Возвращает false, если цель недостижима в пределах MaxExpansions.
func (s *Searcher) Find(from, to vec.Vec2Float) (*Path, bool) {
	start := from.ToTile(s.ts)
	goal := to.ToTile(s.ts)

	open := openHeap{{cell: start, f: heuristic(start, goal)}}
	bestG := map[cell]float64{start: 0}
	parent := make(map[cell]cell)
	closed := make(map[cell]bool)

	expansions := 0
	for len(open) > 0 && expansions < MaxExpansions {
		current := open.pop().cell
		if current == goal {
			return s.reconstruct(current, start, parent), true
		}
		if closed[current] {
			continue
		}
		closed[current] = true
		expansions++

		for _, nb := range s.neighbors(current) {
			if closed[nb] {
				continue
			}
			g := bestG[current] + moveCost(current, nb)
			if known, ok := bestG[nb]; !ok || g < known {
				parent[nb] = current
				bestG[nb] = g
				open.push(openEntry{cell: nb, f: g + heuristic(nb, goal)})
			}
		}
	}
	return nil, false
}

// reconstruct проходит по родителям от цели к старту и разворачивает в мировые точки
func (s *Searcher) reconstruct(end, start cell, parent map[cell]cell) *Path {
	var rev []vec.Vec2Float
	c := end
	for {
		rev = append(rev, vec.FromTile(c, s.ts))
		if c == start {
			break
		}
		c = parent[c]
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return NewPath(rev...)
}
