package entity

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PathfinderSpec: настройки поиска пути для типа сущности
type PathfinderSpec struct {
	Targets       []string `yaml:"targets" json:"targets"`
	MaxJumpHeight float64  `yaml:"max_jump_height" json:"maxJumpHeight"` // В мировых единицах, 0: не задана
}

// Type: общее неизменяемое описание типа сущности.
// Экземпляры делят один *Type, своё состояние хранят в Entity.
type Type struct {
	Name       string          `yaml:"name" json:"name"`
	Width      float64         `yaml:"width" json:"width"`
	Height     float64         `yaml:"height" json:"height"`
	Speed      float64         `yaml:"speed" json:"speed"`
	Health     int             `yaml:"health" json:"health"`
	JumpPower  float64         `yaml:"jump_power" json:"jumpPower"`
	Pathfinder *PathfinderSpec `yaml:"pathfinder,omitempty" json:"pathfinder,omitempty"`
}

// Is сравнивает имя типа без учёта регистра
func (t *Type) Is(name string) bool {
	return t != nil && strings.EqualFold(t.Name, name)
}

// Registry: реестр типов сущностей по имени
type Registry struct {
	types map[string]*Type
}

// NewRegistry создаёт пустой реестр
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register добавляет тип; имя нечувствительно к регистру
func (r *Registry) Register(t *Type) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("entity type without name")
	}
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("entity type %q: width and height must be positive", t.Name)
	}
	r.types[strings.ToLower(t.Name)] = t
	return nil
}

// Get возвращает тип по имени
func (r *Registry) Get(name string) (*Type, bool) {
	t, ok := r.types[strings.ToLower(name)]
	return t, ok
}

// Len возвращает количество типов
func (r *Registry) Len() int { return len(r.types) }

// typesFile: формат YAML-файла с типами сущностей
type typesFile struct {
	Entities []*Type `yaml:"entities"`
}

// ParseTypes разбирает YAML со списком типов
func ParseTypes(data []byte) (*Registry, error) {
	var f typesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse entity types: %w", err)
	}
	r := NewRegistry()
	for _, t := range f.Entities {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadTypes читает типы сущностей из YAML-файла
func LoadTypes(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity types: %w", err)
	}
	return ParseTypes(data)
}
