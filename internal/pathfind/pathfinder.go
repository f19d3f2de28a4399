package pathfind

import (
	"math"
	"strings"

	"github.com/annel0/tile-world/internal/logging"
	"github.com/annel0/tile-world/internal/vec"
)

// Candidate: сущность, которую можно выбрать целью
type Candidate struct {
	ID       uint64
	TypeName string
	Pos      vec.Vec2Float
}

// Population: доступ к сущностям мира по непрозрачным идентификаторам.
// Locate возвращает false для удалённой сущности.
type Population interface {
	Candidates() []Candidate
	Locate(id uint64) (vec.Vec2Float, bool)
}

// Agent описывает сущность, для которой ищется путь
type Agent struct {
	ID            uint64
	Pos           vec.Vec2Float
	Width, Height float64
}

// Pathfinder хранит цель и последний построенный путь одной сущности.
// Цель хранится как идентификатор и не продлевает жизнь сущности.
type Pathfinder struct {
	targets       []string
	maxJumpHeight float64

	target    uint64
	hasTarget bool

	lastPath   *Path
	lastTarget vec.Vec2Float

	Recomputes int // Количество запусков A*
	Fallbacks  int // Количество запасных прямых путей
}

// New создаёт поисковик пути; targets: имена типов целей
func New(targets []string, maxJumpHeight float64) *Pathfinder {
	return &Pathfinder{targets: targets, maxJumpHeight: maxJumpHeight}
}

// MaxJumpHeight возвращает высоту прыжка в мировых единицах
func (p *Pathfinder) MaxJumpHeight() float64 { return p.maxJumpHeight }

// Targets возвращает имена типов целей
func (p *Pathfinder) Targets() []string { return p.targets }

// Target возвращает текущую цель
func (p *Pathfinder) Target() (uint64, bool) { return p.target, p.hasTarget }

// SetTarget задаёт цель вручную и сбрасывает кеш пути
func (p *Pathfinder) SetTarget(id uint64) {
	p.target = id
	p.hasTarget = true
	p.lastPath = nil
}

// LastPath возвращает последний путь (может быть nil)
func (p *Pathfinder) LastPath() *Path { return p.lastPath }

// Clear сбрасывает цель и путь
func (p *Pathfinder) Clear() {
	p.hasTarget = false
	p.target = 0
	p.lastPath = nil
}

// Matches сообщает, является ли тип целевым (без учёта регистра)
func (p *Pathfinder) Matches(typeName string) bool {
	for _, t := range p.targets {
		if strings.EqualFold(t, typeName) {
			return true
		}
	}
	return false
}

// acquire выбирает ближайшую подходящую сущность
func (p *Pathfinder) acquire(pop Population, self Agent) {
	best := math.MaxFloat64
	found := false
	for _, c := range pop.Candidates() {
		if c.ID == self.ID || !p.Matches(c.TypeName) {
			continue
		}
		if d := self.Pos.DistanceTo(c.Pos); d < best {
			best = d
			p.target = c.ID
			found = true
		}
	}
	p.hasTarget = found
}

// Update возвращает путь к цели, пересчитывая его, только если цель сместилась.
// Возвращает nil, если цели нет.
func (p *Pathfinder) Update(g Grid, pop Population, self Agent) *Path {
	var goal vec.Vec2Float
	if p.hasTarget {
		pos, ok := pop.Locate(p.target)
		if !ok {
			// Цель исчезла из мира
			p.Clear()
		} else {
			goal = pos
		}
	}
	if !p.hasTarget {
		p.acquire(pop, self)
		if !p.hasTarget {
			return nil
		}
		goal, _ = pop.Locate(p.target)
	}

	cellSize := float64(g.TileSize())
	if p.lastPath != nil && goal.DistanceTo(p.lastTarget) < cellSize*0.25 {
		return p.lastPath
	}

	p.Recomputes++
	s := NewSearcher(g, self.Width, self.Height, p.maxJumpHeight)
	path, ok := s.Find(self.Pos, goal)
	if !ok || path.IsEmpty() {
		p.Fallbacks++
		logging.GetPathfindLogger().Trace("путь от (%.1f, %.1f) до (%.1f, %.1f) не найден, идём напрямую",
			self.Pos.X, self.Pos.Y, goal.X, goal.Y)
		path = straightPath(self.Pos, goal)
	}
	p.lastPath = path
	p.lastTarget = goal
	return path
}
