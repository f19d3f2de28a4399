package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMix64Deterministic(t *testing.T) {
	assert.Equal(t, Mix64(1337, 42), Mix64(1337, 42))
	assert.NotEqual(t, Mix64(1337, 42), Mix64(1337, 43))
	assert.NotEqual(t, Mix64(1337, 42), Mix64(1338, 42))
}

func TestValueNoiseRange(t *testing.T) {
	for x := -200; x < 200; x++ {
		v := ValueNoise1D(7, float64(x)*0.37)
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	// На узлах решётки шум совпадает со значением решётки
	assert.Equal(t, ValueAt(7, 3), ValueNoise1D(7, 3))
}

func TestFBMNormalized(t *testing.T) {
	f := FBM{Seed: 1, Octaves: 4, BaseFrequency: 1.0 / 48, Lacunarity: 2, Persistence: 0.5}
	for x := 0; x < 500; x++ {
		v := f.Sample(float64(x))
		assert.True(t, v >= -1 && v <= 1, "значение %v вне диапазона", v)
	}
	assert.Equal(t, f.Sample(123), f.Sample(123))
}

func TestPerlinNoiseRange(t *testing.T) {
	pn := NewPerlinNoise(99, 2, 2, 3)
	other := NewPerlinNoise(99, 2, 2, 3)
	for x := 0; x < 50; x++ {
		v := pn.Noise1D(float64(x) * 0.1)
		assert.Equal(t, v, other.Noise1D(float64(x)*0.1), "одинаковый сид даёт одинаковый шум")
	}
}
