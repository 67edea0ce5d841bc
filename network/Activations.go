package network

import (
	G "gorgonia.org/gorgonia"
)

type activationType string

const (
	relu     activationType = "relu"
	selu     activationType = "selu"
	tanh     activationType = "tanh"
	identity activationType = "identity"
	nil_     activationType = "nil"
)

// SELU constants of Klambauer et al. (2017)
const (
	seluScale float64 = 1.0507009873554805
	seluAlpha float64 = 1.6732632423543772
)

// Activation represents an activation function type
type Activation struct {
	activationType
	f func(x *G.Node) (*G.Node, error)
}

// fwd performs the forward pass of an Activation
func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	return a.f(x)
}

// String implements the Stringer interface
func (a *Activation) String() string {
	return string(a.activationType)
}

// IsIdentity returns whether or not the Activation is the identity
// function.
func (a *Activation) IsIdentity() bool {
	return a.activationType == identity
}

// IsNil returns whether an activation is nil
func (a *Activation) IsNil() bool {
	return a.activationType == nil_ || a.f == nil
}

// Nil returns a nil *Activation
func Nil() *Activation {
	return &Activation{
		activationType: nil_,
		f:              nil,
	}
}

// Identity returns an identity *Activation
func Identity() *Activation {
	return &Activation{
		activationType: identity,
		f: func(x *G.Node) (*G.Node, error) {
			return x, nil
		},
	}
}

// ReLU returns a ReLU *Activation
func ReLU() *Activation {
	return &Activation{
		activationType: relu,
		f:              G.Rectify,
	}
}

// TanH returns a tanh *Activation
func TanH() *Activation {
	return &Activation{
		activationType: tanh,
		f:              G.Tanh,
	}
}

// SELU returns a scaled exponential linear unit *Activation. Gorgonia
// has no SELU op, so it is composed from primitives:
// selu(x) = scale * (max(x, 0) + alpha*(exp(min(x, 0)) - 1)).
func SELU() *Activation {
	return &Activation{
		activationType: selu,
		f: func(x *G.Node) (*G.Node, error) {
			pos, err := G.Rectify(x)
			if err != nil {
				return nil, err
			}

			// min(x, 0) == -max(-x, 0)
			negX, err := G.Neg(x)
			if err != nil {
				return nil, err
			}
			negPart, err := G.Rectify(negX)
			if err != nil {
				return nil, err
			}
			neg, err := G.Neg(negPart)
			if err != nil {
				return nil, err
			}

			expm1, err := G.Exp(neg)
			if err != nil {
				return nil, err
			}
			expm1, err = G.Sub(expm1, G.NewConstant(1.0))
			if err != nil {
				return nil, err
			}
			scaledExp, err := G.Mul(expm1, G.NewConstant(seluAlpha))
			if err != nil {
				return nil, err
			}

			sum, err := G.Add(pos, scaledExp)
			if err != nil {
				return nil, err
			}
			return G.Mul(sum, G.NewConstant(seluScale))
		},
	}
}
