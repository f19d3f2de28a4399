package world

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/annel0/tile-world/internal/physics"
	"github.com/annel0/tile-world/internal/world/gen"
)

// OptionsFile: имя файла параметров мира в каталоге сохранения
const OptionsFile = "options.json"

// ErrInvalidOptions возвращается при неполных или некорректных параметрах мира
var ErrInvalidOptions = errors.New("invalid world options")

//go:embed options.schema.json
var optionsSchemaJSON string

var optionsSchema = jsonschema.MustCompileString("options.schema.json", optionsSchemaJSON)

// Options: сериализуемые параметры мира. Равные Options дают эквивалентные миры.
type Options struct {
	Seed           int64          `json:"seed"`
	Name           string         `json:"name"`
	TileSize       int            `json:"tileSize"`
	Gravity        float64        `json:"gravity"`
	LinearDamping  float64        `json:"linearDamping"`
	GroundFriction float64        `json:"groundFriction"`
	Restitution    float64        `json:"restitution"`
	WorldFloorY    float64        `json:"worldFloorY"`
	Generator      gen.Descriptor `json:"generator"`
}

// DefaultOptions возвращает параметры по умолчанию с плоским генератором
func DefaultOptions(name string, seed int64) Options {
	p := physics.DefaultParams()
	return Options{
		Seed:           seed,
		Name:           name,
		TileSize:       128,
		Gravity:        p.Gravity,
		LinearDamping:  p.LinearDamping,
		GroundFriction: p.GroundFriction,
		Restitution:    p.Restitution,
		WorldFloorY:    0,
		Generator:      gen.NewFlat(nil).Descriptor(),
	}
}

// Physics возвращает физические константы
func (o Options) Physics() physics.Params {
	return physics.Params{
		Gravity:        o.Gravity,
		LinearDamping:  o.LinearDamping,
		GroundFriction: o.GroundFriction,
		Restitution:    o.Restitution,
	}
}

// Validate проверяет параметры, заданные в коде
func (o Options) Validate() error {
	if o.Name == "" || strings.ContainsAny(o.Name, `/\`) || o.Name == "." || o.Name == ".." {
		return fmt.Errorf("%w: bad name %q", ErrInvalidOptions, o.Name)
	}
	if o.TileSize <= 0 {
		return fmt.Errorf("%w: tileSize must be positive, got %d", ErrInvalidOptions, o.TileSize)
	}
	return nil
}

// ParseOptions разбирает options.json. Отсутствие обязательного поля: ошибка.
func ParseOptions(data []byte) (Options, error) {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if err := optionsSchema.Validate(raw); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	var opts Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Marshal кодирует параметры в человекочитаемый JSON
func (o Options) Marshal() ([]byte, error) {
	return json.MarshalIndent(o, "", "  ")
}

// ReadOptions читает параметры из каталога мира
func ReadOptions(dir string) (Options, error) {
	data, err := os.ReadFile(filepath.Join(dir, OptionsFile))
	if err != nil {
		return Options{}, err
	}
	return ParseOptions(data)
}

// WriteOptions записывает параметры в каталог мира
func WriteOptions(dir string, o Options) error {
	data, err := o.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, OptionsFile), data, 0644)
}
