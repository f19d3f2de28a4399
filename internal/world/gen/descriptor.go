package gen

// Descriptor: сериализуемый набор параметров, полностью определяющий генератор.
// Числовые поля: указатели: отсутствие поля означает значение по умолчанию.
type Descriptor struct {
	Type    string            `json:"type"`
	Palette map[string]string `json:"palette,omitempty"`

	Amplitude      *float64 `json:"amplitude,omitempty"`
	VerticalOffset *float64 `json:"verticalOffset,omitempty"`
	Seed           *int64   `json:"seed,omitempty"`
	Octaves        *int     `json:"octaves,omitempty"`
	BaseFrequency  *float64 `json:"baseFrequency,omitempty"`
	Lacunarity     *float64 `json:"lacunarity,omitempty"`
	Persistence    *float64 `json:"persistence,omitempty"`

	// Устаревший параметр: baseFrequency = 1 / max(1, wavelength)
	Wavelength *float64 `json:"wavelength,omitempty"`

	// Параметры шума Перлина
	Alpha *float64 `json:"alpha,omitempty"`
	Beta  *float64 `json:"beta,omitempty"`
}

func float64Or(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func int64Or(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func ptr[T any](v T) *T { return &v }
