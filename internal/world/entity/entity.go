package entity

import (
	"github.com/annel0/tile-world/internal/pathfind"
	"github.com/annel0/tile-world/internal/physics"
	"github.com/annel0/tile-world/internal/vec"
)

// Entity представляет сущность мира: общий тип плюс собственное изменяемое состояние
type Entity struct {
	handle Handle
	typ    *Type
	body   *physics.Body

	health int
	speed  float64

	pathfinder *pathfind.Pathfinder // nil, если сущность не ищет путь
	path       *pathfind.Path
}

// newEntity создаёт сущность в указанной мировой позиции
func newEntity(h Handle, t *Type, x, y float64) *Entity {
	e := &Entity{
		handle: h,
		typ:    t,
		body:   physics.NewBody(x, y, t.Width, t.Height),
		health: t.Health,
		speed:  t.Speed,
	}
	if t.Pathfinder != nil {
		e.pathfinder = pathfind.New(t.Pathfinder.Targets, t.Pathfinder.MaxJumpHeight)
	}
	return e
}

// Handle возвращает слабую ссылку на сущность
func (e *Entity) Handle() Handle { return e.handle }

// Type возвращает тип сущности
func (e *Entity) Type() *Type { return e.typ }

// Body возвращает физическое тело
func (e *Entity) Body() *physics.Body { return e.body }

// Position возвращает мировую позицию (левый нижний угол)
func (e *Entity) Position() vec.Vec2Float {
	return vec.Vec2Float{X: e.body.X, Y: e.body.Y}
}

// Width возвращает ширину
func (e *Entity) Width() float64 { return e.typ.Width }

// Height возвращает высоту
func (e *Entity) Height() float64 { return e.typ.Height }

// Velocity возвращает скорость
func (e *Entity) Velocity() vec.Vec2Float {
	return vec.Vec2Float{X: e.body.VX, Y: e.body.VY}
}

// ApplyForce добавляет ускорение на один шаг
func (e *Entity) ApplyForce(fx, fy float64) { e.body.ApplyForce(fx, fy) }

// SetVelocity задаёт скорость
func (e *Entity) SetVelocity(vx, vy float64) { e.body.SetVelocity(vx, vy) }

// Jump прыгает, только если сущность стоит на земле
func (e *Entity) Jump(impulse float64) bool { return e.body.Jump(impulse) }

// OnGround сообщает, стоит ли сущность на земле
func (e *Entity) OnGround() bool { return e.body.OnGround }

// Health возвращает здоровье
func (e *Entity) Health() int { return e.health }

// SetHealth задаёт здоровье, не превышая максимум типа
func (e *Entity) SetHealth(h int) {
	if h > e.typ.Health {
		h = e.typ.Health
	}
	e.health = h
}

// Speed возвращает скорость движения
func (e *Entity) Speed() float64 { return e.speed }

// SetSpeed меняет скорость движения
func (e *Entity) SetSpeed(s float64) { e.speed = s }

// Pathfinder возвращает поисковик пути (может быть nil)
func (e *Entity) Pathfinder() *pathfind.Pathfinder { return e.pathfinder }

// Path возвращает текущий путь (может быть nil)
func (e *Entity) Path() *pathfind.Path { return e.path }

// Step продвигает физику сущности на один шаг
func (e *Entity) Step(g physics.Grid, p physics.Params) {
	physics.Step(g, p, e.body)
}

// Think обновляет путь к цели, если у сущности есть поисковик
func (e *Entity) Think(g pathfind.Grid, pop pathfind.Population) *pathfind.Path {
	if e.pathfinder == nil {
		return nil
	}
	e.path = e.pathfinder.Update(g, pop, pathfind.Agent{
		ID:     uint64(e.handle),
		Pos:    e.Position(),
		Width:  e.typ.Width,
		Height: e.typ.Height,
	})
	return e.path
}

// ClearPath сбрасывает цель и путь
func (e *Entity) ClearPath() {
	e.path = nil
	if e.pathfinder != nil {
		e.pathfinder.Clear()
	}
}
