package initwfn

import G "gorgonia.org/gorgonia"

// ZeroesConfig implements a configuration of the zero initialization
// algorithm.
type ZeroesConfig struct {
}

// NewZeroes returns a new zero weight initializer
func NewZeroes() (*InitWFn, error) {
	config := ZeroesConfig{}

	return newInitWFn(config)
}

func (z ZeroesConfig) Type() Type {
	return Zeroes
}

func (z ZeroesConfig) Create() G.InitWFn {
	return G.Zeroes()
}
