package tile

// ID представляет идентификатор тайла. 0: воздух по соглашению,
// остальные значения: индексы палитры, разрешаемые снаружи.
type ID uint32

// AirID: пустой тайл
const AirID ID = 0

// Type представляет разрешённый тип тайла (ссылка на ресурс палитры).
// Ядро не рисует тайлы, ему нужен только адрес ресурса.
type Type struct {
	Location string // Например "tiles:grass"
}

// Palette разрешает тип тайла по его ID
type Palette interface {
	Resolve(id ID) (*Type, bool)
}

// Tile представляет один тайл мира
type Tile struct {
	id       ID
	cached   *Type                  // Кешированный тип, может быть nil
	metadata map[string]interface{} // Метаданные экземпляра
}

// New создаёт тайл с указанным ID
func New(id ID) Tile {
	return Tile{id: id}
}

// ID возвращает идентификатор тайла
func (t *Tile) ID() ID {
	return t.id
}

// SetID меняет идентификатор и сбрасывает кешированный тип
func (t *Tile) SetID(id ID) {
	if t.id == id {
		return
	}
	t.id = id
	t.cached = nil
}

// IsAir возвращает true для пустого тайла
func (t *Tile) IsAir() bool {
	return t.id == AirID
}

// Type возвращает кешированный тип (может быть nil)
func (t *Tile) Type() *Type {
	return t.cached
}

// SetType сохраняет разрешённый тип
func (t *Tile) SetType(tt *Type) {
	t.cached = tt
}

// ResolveType возвращает тип из кеша или разрешает его через палитру
func (t *Tile) ResolveType(p Palette) *Type {
	if t.cached != nil || t.id == AirID || p == nil {
		return t.cached
	}
	if tt, ok := p.Resolve(t.id); ok {
		t.cached = tt
	}
	return t.cached
}

// Metadata возвращает карту метаданных, создавая её при необходимости
func (t *Tile) Metadata() map[string]interface{} {
	if t.metadata == nil {
		t.metadata = make(map[string]interface{})
	}
	return t.metadata
}

// MapPalette: палитра на основе карты ID -> тип
type MapPalette map[ID]*Type

// Resolve реализует Palette
func (p MapPalette) Resolve(id ID) (*Type, bool) {
	tt, ok := p[id]
	return tt, ok
}
