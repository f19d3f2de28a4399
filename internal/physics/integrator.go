package physics

import "math"

// restSpeed: остаточная скорость отскока, которая обнуляется
const restSpeed = 0.01

// Params: физические константы мира
type Params struct {
	Gravity        float64 // Добавляется к ay каждый шаг (отрицательная: вниз)
	LinearDamping  float64 // Множитель vx каждый шаг
	GroundFriction float64 // Множитель vx, когда тело на земле
	Restitution    float64 // Коэффициент отскока от земли
}

// DefaultParams возвращает константы по умолчанию
func DefaultParams() Params {
	return Params{
		Gravity:        -0.75,
		LinearDamping:  1,
		GroundFriction: 0.85,
		Restitution:    0,
	}
}

// Step продвигает тело на один фиксированный шаг.
// Движение разрешается по осям отдельно: сначала X, затем Y.
func Step(g Grid, p Params, b *Body) {
	b.AY += p.Gravity

	b.VX += b.AX
	b.VY += b.AY

	// Затухание только по горизонтали
	b.VX *= p.LinearDamping

	b.OnGround = false
	ts := g.TileSize()

	if dx := b.VX; dx != 0 {
		resolveX(g, b, dx, ts)
	}
	if dy := b.VY; dy != 0 {
		resolveY(g, p, b, dy, ts)
	}

	if b.OnGround {
		b.VX *= p.GroundFriction
	}

	b.AX = 0
	b.AY = 0
}

// Столбцы и строки проходятся от текущей передней грани к конечной позиции,
// поэтому тело останавливается у первого твёрдого тайла даже при смещении больше тайла.
func resolveX(g Grid, b *Body, dx float64, ts int) {
	minTy, maxTy := TileSpan(b.Y, b.Height, ts)
	solidColumn := func(tx int) bool {
		for ty := minTy; ty <= maxTy; ty++ {
			if g.IsSolidTile(tx, ty) {
				return true
			}
		}
		return false
	}

	if dx > 0 {
		// Прижимаемся к левой грани блокирующего тайла
		last := TileIndex(b.X+b.Width+dx-Epsilon, ts)
		for tx := TileIndex(b.X+b.Width-Epsilon, ts) + 1; tx <= last; tx++ {
			if solidColumn(tx) {
				b.X = float64(tx*ts) - b.Width
				b.VX = 0
				return
			}
		}
	} else {
		// Прижимаемся к правой грани
		last := TileIndex(b.X+dx+Epsilon, ts)
		for tx := TileIndex(b.X+Epsilon, ts) - 1; tx >= last; tx-- {
			if solidColumn(tx) {
				b.X = float64((tx + 1) * ts)
				b.VX = 0
				return
			}
		}
	}
	b.X += dx
}

func resolveY(g Grid, p Params, b *Body, dy float64, ts int) {
	minTx, maxTx := TileSpan(b.X, b.Width, ts)
	solidRow := func(ty int) bool {
		for tx := minTx; tx <= maxTx; tx++ {
			if g.IsSolidTile(tx, ty) {
				return true
			}
		}
		return false
	}

	if dy > 0 {
		// Потолок
		last := TileIndex(b.Y+b.Height+dy-Epsilon, ts)
		for ty := TileIndex(b.Y+b.Height-Epsilon, ts) + 1; ty <= last; ty++ {
			if solidRow(ty) {
				b.Y = float64(ty*ts) - b.Height
				b.VY = 0
				return
			}
		}
		b.Y += dy
		return
	}

	// Приземление
	last := TileIndex(b.Y+dy+Epsilon, ts)
	for ty := TileIndex(b.Y+Epsilon, ts) - 1; ty >= last; ty-- {
		if !solidRow(ty) {
			continue
		}
		b.Y = float64((ty + 1) * ts)
		b.VY = -b.VY * p.Restitution
		if math.Abs(b.VY) < restSpeed {
			b.VY = 0
		}
		b.OnGround = true
		return
	}
	b.Y += dy
}
