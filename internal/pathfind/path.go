package pathfind

import "github.com/annel0/tile-world/internal/vec"

// Path: упорядоченный список точек маршрута в мировых координатах с курсором.
// После построения меняется только курсор.
type Path struct {
	points []vec.Vec2Float
	index  int
}

// NewPath создаёт путь из точек
func NewPath(points ...vec.Vec2Float) *Path {
	return &Path{points: points}
}

// straightPath: запасной путь из двух точек
func straightPath(from, to vec.Vec2Float) *Path {
	return NewPath(from, to)
}

// Len возвращает количество точек
func (p *Path) Len() int { return len(p.points) }

// IsEmpty возвращает true для пустого пути
func (p *Path) IsEmpty() bool { return len(p.points) == 0 }

// Index возвращает позицию курсора
func (p *Path) Index() int { return p.index }

// Reset возвращает курсор в начало
func (p *Path) Reset() { p.index = 0 }

// HasNext сообщает, остались ли непройденные точки
func (p *Path) HasNext() bool { return p.index < len(p.points) }

// Next возвращает текущую точку и сдвигает курсор
func (p *Path) Next() (vec.Vec2Float, bool) {
	if !p.HasNext() {
		return vec.Vec2Float{}, false
	}
	pt := p.points[p.index]
	p.index++
	return pt, true
}

// Peek возвращает текущую точку без сдвига (последнюю, если путь пройден)
func (p *Path) Peek() (vec.Vec2Float, bool) {
	if len(p.points) == 0 {
		return vec.Vec2Float{}, false
	}
	i := p.index
	if i >= len(p.points) {
		i = len(p.points) - 1
	}
	return p.points[i], true
}

// Last возвращает конечную точку
func (p *Path) Last() (vec.Vec2Float, bool) {
	if len(p.points) == 0 {
		return vec.Vec2Float{}, false
	}
	return p.points[len(p.points)-1], true
}

// Points возвращает копию точек
func (p *Path) Points() []vec.Vec2Float {
	out := make([]vec.Vec2Float, len(p.points))
	copy(out, p.points)
	return out
}
