package entity

import "math"

// arriveRadius: доля тайла, при которой точка пути считается достигнутой
const arriveRadius = 0.5

// FollowPath направляет сущность к следующей точке пути.
// Горизонтальная скорость задаётся напрямую, прыжок: если точка выше и сущность на земле.
// Возвращает false, если идти некуда.
func (e *Entity) FollowPath(tileSize int) bool {
	if e.path == nil {
		return false
	}
	pos := e.Position()
	radius := float64(tileSize) * arriveRadius
	for e.path.HasNext() {
		wp, _ := e.path.Peek()
		d := wp.Sub(pos)
		if math.Abs(d.X) < radius && math.Abs(d.Y) < radius {
			e.path.Next()
			continue
		}
		dirX := 0.0
		if d.X > radius {
			dirX = 1
		} else if d.X < -radius {
			dirX = -1
		}
		e.body.VX = dirX * e.speed
		if d.Y > radius && e.typ.JumpPower > 0 {
			e.Jump(e.typ.JumpPower)
		}
		return true
	}
	e.body.VX = 0
	return false
}
