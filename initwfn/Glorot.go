package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// GlorotUConfig implements a configuration of the Glorot Uniform
// initialization algorithm. Unlike the Gorgonia implementation, the
// weights are drawn from a seeded random number generator so that
// network initialization is reproducible.
type GlorotUConfig struct {
	Gain float64
	Seed uint64
}

// NewGlorotU returns a new seeded Glorot Uniform weight initializer
func NewGlorotU(gain float64, seed uint64) (*InitWFn, error) {
	config := GlorotUConfig{
		Gain: gain,
		Seed: seed,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GlorotUConfig) Create() G.InitWFn {
	rng := rand.New(rand.NewSource(g.Seed))

	return func(dt tensor.Dtype, s ...int) interface{} {
		fanIn, fanOut := fans(s...)
		limit := g.Gain * math.Sqrt(6.0/float64(fanIn+fanOut))

		size := 1
		for _, dim := range s {
			size *= dim
		}

		data := make([]float64, size)
		for i := range data {
			data[i] = limit * (2.0*rng.Float64() - 1.0)
		}
		return data
	}
}

// fans computes the fan-in and fan-out of a weight tensor with shape s
func fans(s ...int) (int, int) {
	if len(s) == 1 {
		return s[0], s[0]
	}

	fanIn := s[len(s)-2]
	fanOut := s[len(s)-1]

	// Receptive field size for dimensions beyond the last two
	for _, dim := range s[:len(s)-2] {
		fanIn *= dim
		fanOut *= dim
	}
	return fanIn, fanOut
}
