package physics

// Body: физическое состояние сущности. Ось Y направлена вверх.
type Body struct {
	X, Y          float64 // Левый нижний угол в мировых единицах
	VX, VY        float64
	AX, AY        float64 // Ускорение, действует один шаг
	OnGround      bool
	Width, Height float64
}

// NewBody создаёт тело в указанной позиции
func NewBody(x, y, width, height float64) *Body {
	return &Body{X: x, Y: y, Width: width, Height: height}
}

// ApplyForce добавляет ускорение на текущий шаг
func (b *Body) ApplyForce(fx, fy float64) {
	b.AX += fx
	b.AY += fy
}

// SetVelocity задаёт скорость
func (b *Body) SetVelocity(vx, vy float64) {
	b.VX = vx
	b.VY = vy
}

// Jump добавляет вертикальный импульс, только если тело стоит на земле
func (b *Body) Jump(impulse float64) bool {
	if !b.OnGround {
		return false
	}
	b.VY += impulse
	b.OnGround = false
	return true
}
