package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ts = 16

// mapGrid: тестовая сетка: твёрдые тайлы перечислены явно
type mapGrid map[[2]int]bool

func (m mapGrid) TileSize() int               { return ts }
func (m mapGrid) IsSolidTile(tx, ty int) bool { return m[[2]int{tx, ty}] }

func floorGrid() mapGrid {
	g := mapGrid{}
	for tx := -20; tx <= 20; tx++ {
		g[[2]int{tx, 0}] = true
	}
	return g
}

func TestCollidesBoundary(t *testing.T) {
	g := floorGrid()
	assert.False(t, Collides(g, 0, ts, 8, 8), "Касание верхней грани пола не является пересечением")
	assert.True(t, Collides(g, 0, ts-1, 8, 8))
	assert.True(t, CanMoveToPosition(g, 0, 2*ts, 8, 8))
}

func TestGroundSettling(t *testing.T) {
	g := floorGrid()
	b := NewBody(4, 5*ts+3, 10, 12)
	p := DefaultParams()

	for i := 0; i < 200; i++ {
		Step(g, p, b)
	}
	assert.True(t, b.OnGround, "Тело должно стоять на земле")
	assert.Equal(t, 0.0, b.VY)
	assert.Equal(t, float64(ts), b.Y, "Тело должно лежать ровно на границе тайла")
	assert.Equal(t, 4.0, b.X)
}

func TestGroundFrictionAndImpulses(t *testing.T) {
	g := floorGrid()
	b := NewBody(0, ts, 8, 8)
	p := DefaultParams()
	Step(g, p, b)
	require.True(t, b.OnGround)

	b.SetVelocity(10, 0)
	Step(g, p, b)
	assert.InDelta(t, 10*p.GroundFriction, b.VX, 1e-9)
	assert.Equal(t, 10.0, b.X)

	b.ApplyForce(2, 0)
	Step(g, p, b)
	assert.Zero(t, b.AX, "Ускорение сбрасывается после шага")
	assert.Zero(t, b.AY)

	assert.True(t, b.Jump(5))
	assert.False(t, b.OnGround)
	assert.False(t, b.Jump(5), "Прыжок в воздухе запрещён")
}

func TestAxisSeparatedCorner(t *testing.T) {
	// L-образный угол: пол в строке 0 и стена в столбце 3
	g := floorGrid()
	for ty := 0; ty < 10; ty++ {
		g[[2]int{3, ty}] = true
	}
	p := DefaultParams()
	b := NewBody(36, 40, 8, 8)
	b.SetVelocity(10, -3)

	Step(g, p, b)
	assert.Equal(t, 40.0, b.X, "По X тело прижимается к стене")
	assert.Zero(t, b.VX)
	assert.InDelta(t, 36.25, b.Y, 1e-9, "По Y движение продолжается")
	assert.InDelta(t, -3.75, b.VY, 1e-9)
	assert.False(t, b.OnGround)

	for i := 0; i < 50; i++ {
		b.ApplyForce(1, 0)
		Step(g, p, b)
	}
	assert.Equal(t, 40.0, b.X)
	assert.Equal(t, float64(ts), b.Y)
	assert.True(t, b.OnGround)
}

func TestCeilingHit(t *testing.T) {
	g := floorGrid()
	g[[2]int{0, 3}] = true
	p := Params{LinearDamping: 1, GroundFriction: 1}
	b := NewBody(2, ts, 8, 8)
	b.SetVelocity(0, 30)

	Step(g, p, b)
	assert.Equal(t, float64(3*ts-8), b.Y, "Голова упирается в нижнюю грань потолка")
	assert.Zero(t, b.VY)
}

func TestRestitutionBounce(t *testing.T) {
	g := floorGrid()
	p := DefaultParams()
	p.Restitution = 0.5
	b := NewBody(0, ts+1, 8, 8)
	b.SetVelocity(0, -9.25)

	Step(g, p, b)
	assert.True(t, b.OnGround)
	assert.InDelta(t, 5.0, b.VY, 1e-9)
}

func TestZeroMoveAndNoDepenetration(t *testing.T) {
	g := floorGrid()
	p := Params{LinearDamping: 1, GroundFriction: 1}
	b := NewBody(0, 4, 8, 8) // уже внутри пола

	Step(g, p, b)
	assert.Equal(t, 0.0, b.X)
	assert.Equal(t, 4.0, b.Y, "Нулевое перемещение не разрешается и не выталкивает тело")
	assert.False(t, b.OnGround)
}

func TestFastMoveStopsAtFirstWall(t *testing.T) {
	g := mapGrid{{1, 0}: true, {1, 1}: true}
	p := Params{LinearDamping: 1, GroundFriction: 1}
	b := NewBody(0, 0, 8, 8)
	b.SetVelocity(26, 0)

	Step(g, p, b)
	assert.Equal(t, 8.0, b.X, "Тело упирается в ближнюю грань стены, а не отскакивает назад")
	assert.Zero(t, b.VX)

	// Стена дальше, чем один тайл, и тело не проскакивает сквозь неё
	b = NewBody(0, 0, 8, 8)
	g = mapGrid{{3, 0}: true, {5, 0}: true}
	b.SetVelocity(100, 0)
	Step(g, p, b)
	assert.Equal(t, float64(3*ts-8), b.X)

	b = NewBody(100, 0, 8, 8)
	b.SetVelocity(-100, 0)
	Step(g, p, b)
	assert.Equal(t, float64(6*ts), b.X, "Движение влево останавливается у правой грани")
}

func TestFastLandingSnapsToFloorTop(t *testing.T) {
	g := floorGrid()
	p := Params{LinearDamping: 1, GroundFriction: 1}
	b := NewBody(0, 20, 8, 8)
	b.SetVelocity(0, -22)

	Step(g, p, b)
	assert.Equal(t, float64(ts), b.Y)
	assert.True(t, b.OnGround)
	assert.Zero(t, b.VY)

	b = NewBody(0, 10*ts, 8, 8)
	b.SetVelocity(0, -10*ts)
	Step(g, p, b)
	assert.Equal(t, float64(ts), b.Y, "Падение на несколько тайлов за шаг не проходит сквозь пол")
	assert.True(t, b.OnGround)
}

func TestWideBodyCollidesAcrossSpan(t *testing.T) {
	// Тело шире тайла опирается на единственный твёрдый тайл под правым краем
	g := mapGrid{{2, 0}: true}
	p := Params{LinearDamping: 1, GroundFriction: 1}
	b := NewBody(4, 3*ts, 40, 10)
	b.SetVelocity(0, -3*ts)

	Step(g, p, b)
	assert.Equal(t, float64(ts), b.Y)
	assert.True(t, b.OnGround)

	// Высокое тело упирается в стену на уровне головы
	g = mapGrid{{4, 2}: true}
	b = NewBody(0, ts, 8, 40)
	b.SetVelocity(4*ts, 0)
	Step(g, p, b)
	assert.Equal(t, float64(4*ts-8), b.X)
	assert.Zero(t, b.VX)
}
