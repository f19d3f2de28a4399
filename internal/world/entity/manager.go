package entity

import (
	"sync"

	"github.com/annel0/tile-world/internal/pathfind"
	"github.com/annel0/tile-world/internal/physics"
	"github.com/annel0/tile-world/internal/vec"
)

// Handle: слабая ссылка на сущность: индекс слота и поколение.
// После удаления сущности старый Handle перестаёт разрешаться.
type Handle uint64

// NilHandle никогда не указывает на сущность
const NilHandle Handle = 0

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index))
}

func (h Handle) index() uint32      { return uint32(h) }
func (h Handle) generation() uint32 { return uint32(h >> 32) }

type slot struct {
	gen    uint32
	entity *Entity
}

// Manager владеет всеми сущностями мира
type Manager struct {
	slots []slot // slots[0] не используется, индекс 0 зарезервирован
	free  []uint32
	order []Handle // Порядок создания, определяет порядок обновления
	mu    sync.RWMutex
}

// NewManager создаёт пустой менеджер сущностей
func NewManager() *Manager {
	return &Manager{slots: make([]slot, 1)}
}

// Spawn создаёт сущность указанного типа в мировых координатах
func (m *Manager) Spawn(t *Type, x, y float64) *Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	var idx uint32
	if n := len(m.free); n > 0 {
		idx = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		m.slots = append(m.slots, slot{})
		idx = uint32(len(m.slots) - 1)
	}
	h := makeHandle(idx, m.slots[idx].gen)
	e := newEntity(h, t, x, y)
	m.slots[idx].entity = e
	m.order = append(m.order, h)
	return e
}

// Despawn удаляет сущность; устаревший Handle игнорируется
func (m *Manager) Despawn(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.aliveLocked(h) {
		return false
	}
	idx := h.index()
	m.slots[idx].entity = nil
	m.slots[idx].gen++
	m.free = append(m.free, idx)
	for i, oh := range m.order {
		if oh == h {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

func (m *Manager) aliveLocked(h Handle) bool {
	idx := h.index()
	if idx == 0 || int(idx) >= len(m.slots) {
		return false
	}
	s := m.slots[idx]
	return s.entity != nil && s.gen == h.generation()
}

// Get разрешает Handle в сущность
func (m *Manager) Get(h Handle) (*Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.aliveLocked(h) {
		return nil, false
	}
	return m.slots[h.index()].entity, true
}

// Len возвращает количество живых сущностей
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// All возвращает сущности в порядке создания
func (m *Manager) All() []*Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Entity, 0, len(m.order))
	for _, h := range m.order {
		out = append(out, m.slots[h.index()].entity)
	}
	return out
}

// StepAll продвигает физику всех сущностей на один шаг, по очереди
func (m *Manager) StepAll(g physics.Grid, p physics.Params) {
	for _, e := range m.All() {
		e.Step(g, p)
	}
}

// ThinkStats: итог одного прохода ThinkAll
type ThinkStats struct {
	WithPath   int // Сущности, у которых есть путь
	Recomputes int // Запуски A* за проход
	Fallbacks  int // Запасные прямые пути за проход
}

// ThinkAll обновляет пути всех сущностей с поисковиком и ведёт их по этим путям
func (m *Manager) ThinkAll(g pathfind.Grid) ThinkStats {
	var st ThinkStats
	ts := g.TileSize()
	for _, e := range m.All() {
		pf := e.Pathfinder()
		if pf == nil {
			continue
		}
		r, f := pf.Recomputes, pf.Fallbacks
		if e.Think(g, m) != nil {
			st.WithPath++
			e.FollowPath(ts)
		}
		st.Recomputes += pf.Recomputes - r
		st.Fallbacks += pf.Fallbacks - f
	}
	return st
}

// Candidates реализует pathfind.Population
func (m *Manager) Candidates() []pathfind.Candidate {
	all := m.All()
	out := make([]pathfind.Candidate, 0, len(all))
	for _, e := range all {
		out = append(out, pathfind.Candidate{
			ID:       uint64(e.handle),
			TypeName: e.typ.Name,
			Pos:      e.Position(),
		})
	}
	return out
}

// Locate реализует pathfind.Population
func (m *Manager) Locate(id uint64) (vec.Vec2Float, bool) {
	e, ok := m.Get(Handle(id))
	if !ok {
		return vec.Vec2Float{}, false
	}
	return e.Position(), true
}
