package util

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Mix64 перемешивает seed и координату в духе splitmix64.
// Чистая функция: одинаковые аргументы дают одинаковый результат.
func Mix64(seed, x int64) uint64 {
	z := uint64(seed) + 0x9E3779B97F4A7C15*(uint64(x)+0xD1B54A32D192ED03)
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// ValueAt возвращает псевдослучайное значение решётки в [-1, 1)
func ValueAt(seed int64, x int64) float64 {
	h := Mix64(seed, x)
	d := float64((h>>11)&0x1fffff) / float64(1<<21) // 21 бит дробной части
	return d*2.0 - 1.0
}

// Fade: сглаживание Перлина 6t^5 - 15t^4 + 10t^3
func Fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// Lerp линейно интерполирует между a и b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ValueNoise1D возвращает одномерный value noise в [-1, 1]
func ValueNoise1D(seed int64, x float64) float64 {
	xf := math.Floor(x)
	xi := int64(xf)
	t := x - xf
	return Lerp(ValueAt(seed, xi), ValueAt(seed, xi+1), Fade(t))
}

// FBM описывает параметры фрактального шума
type FBM struct {
	Seed          int64
	Octaves       int
	BaseFrequency float64 // Циклов на тайл
	Lacunarity    float64 // Множитель частоты на октаву
	Persistence   float64 // Множитель амплитуды на октаву
}

// Sample возвращает нормализованную сумму октав, примерно в [-1, 1]
func (f FBM) Sample(x float64) float64 {
	freq := f.BaseFrequency
	amp := 1.0
	sum, ampSum := 0.0, 0.0
	for o := 0; o < f.Octaves; o++ {
		sum += amp * ValueNoise1D(f.Seed, x*freq)
		ampSum += amp
		freq *= f.Lacunarity
		amp *= f.Persistence
	}
	if ampSum > 1e-9 {
		sum /= ampSum
	}
	return sum
}

// PerlinNoise: обёртка над генератором Перлина без глобального состояния
type PerlinNoise struct {
	p *perlin.Perlin
}

// NewPerlinNoise создаёт генератор шума Перлина с указанным сидом
func NewPerlinNoise(seed int64, alpha, beta float64, octaves int32) *PerlinNoise {
	return &PerlinNoise{p: perlin.NewPerlin(alpha, beta, octaves, seed)}
}

// Noise1D возвращает значение шума Перлина (от 0 до 1)
func (pn *PerlinNoise) Noise1D(x float64) float64 {
	return (pn.p.Noise1D(x) + 1.0) / 2.0
}
