package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tile-world/internal/physics"
)

const ts = 16

func floorGrid() physics.GridFunc {
	return physics.GridFunc{Size: ts, Solid: func(tx, ty int) bool { return ty == -1 }}
}

var (
	playerType = &Type{Name: "Player", Width: 12, Height: 12, Speed: 2, Health: 10, JumpPower: 6}
	zombieType = &Type{
		Name: "zombie", Width: 12, Height: 12, Speed: 1, Health: 5,
		Pathfinder: &PathfinderSpec{Targets: []string{"player"}},
	}
)

func TestHandlesAreWeak(t *testing.T) {
	m := NewManager()
	a := m.Spawn(playerType, 0, 0)
	b := m.Spawn(zombieType, 10, 0)
	assert.NotEqual(t, a.Handle(), b.Handle())
	assert.Equal(t, 2, m.Len())

	require.True(t, m.Despawn(a.Handle()))
	_, ok := m.Get(a.Handle())
	assert.False(t, ok, "Удалённая сущность не разрешается")
	assert.False(t, m.Despawn(a.Handle()), "Повторное удаление игнорируется")

	// Слот переиспользуется с новым поколением
	c := m.Spawn(playerType, 5, 5)
	assert.NotEqual(t, a.Handle(), c.Handle())
	_, ok = m.Get(a.Handle())
	assert.False(t, ok, "Старый Handle не указывает на новую сущность")
	got, ok := m.Get(c.Handle())
	require.True(t, ok)
	assert.Same(t, c, got)

	_, ok = m.Get(NilHandle)
	assert.False(t, ok)
	assert.Equal(t, []*Entity{b, c}, m.All(), "Порядок обновления: порядок создания")
}

func TestEntityStateIsPerInstance(t *testing.T) {
	m := NewManager()
	a := m.Spawn(playerType, 0, 0)
	b := m.Spawn(playerType, 0, 0)
	a.SetHealth(3)
	a.SetSpeed(9)
	assert.Equal(t, 10, b.Health())
	assert.Equal(t, 2.0, b.Speed())
	a.SetHealth(100)
	assert.Equal(t, 10, a.Health(), "Здоровье не превышает максимум типа")
	assert.Nil(t, a.Pathfinder())
}

func TestStepAllSettlesOnFloor(t *testing.T) {
	m := NewManager()
	e := m.Spawn(playerType, 0, 40)
	for i := 0; i < 60; i++ {
		m.StepAll(floorGrid(), physics.DefaultParams())
	}
	assert.True(t, e.OnGround())
	assert.Equal(t, 0.0, e.Position().Y)
	assert.True(t, e.Jump(5))
	assert.False(t, e.Jump(5))
}

func TestThinkAndFollow(t *testing.T) {
	m := NewManager()
	g := floorGrid()
	target := m.Spawn(playerType, 5*ts, 0)
	z := m.Spawn(zombieType, 0, 0)

	st := m.ThinkAll(g)
	assert.Equal(t, 1, st.WithPath, "Путь есть только у сущности с поисковиком")
	assert.Equal(t, 1, st.Recomputes)
	require.NotNil(t, z.Path())
	id, ok := z.Pathfinder().Target()
	require.True(t, ok)
	assert.Equal(t, uint64(target.Handle()), id)

	assert.True(t, z.FollowPath(ts))
	assert.Equal(t, 1.0, z.Velocity().X, "Движение вправо со скоростью типа")

	// Цель исчезла: путь не строится
	m.Despawn(target.Handle())
	assert.Nil(t, z.Think(g, m))
	assert.False(t, z.FollowPath(ts))

	z.ClearPath()
	assert.Nil(t, z.Path())
}

func TestParseTypes(t *testing.T) {
	data := []byte(`
entities:
  - name: player
    width: 12
    height: 20
    speed: 3
    health: 10
  - name: zombie
    width: 12
    height: 20
    speed: 1
    health: 4
    pathfinder:
      targets: [player]
      max_jump_height: 40
`)
	r, err := ParseTypes(data)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	z, ok := r.Get("ZOMBIE")
	require.True(t, ok)
	require.NotNil(t, z.Pathfinder)
	assert.Equal(t, 40.0, z.Pathfinder.MaxJumpHeight)
	assert.True(t, z.Is("Zombie"))

	_, err = ParseTypes([]byte("entities:\n  - name: ghost\n"))
	assert.Error(t, err, "Нулевые размеры недопустимы")
}
