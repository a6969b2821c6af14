// SPDX-License-Identifier: MIT

package ragged

import (
	"fmt"
	"math"
)

// FillKind selects how a freshly allocated pack is initialized.
type FillKind uint8

const (
	// FillRaw leaves the contents unspecified (zero in practice).
	FillRaw FillKind = iota
	// FillZero sets every element to 0.
	FillZero
	// FillGaussian draws every element from N(0, Sigma²).
	FillGaussian
	// FillSequential sets element (a, c) of every item to a.
	FillSequential
)

// DefaultSigma is the standard deviation used by Gaussian(0).
const DefaultSigma = 1.0

// Fill is the closed set of initialization policies accepted by New.
type Fill struct {
	Kind  FillKind
	Sigma float64 // FillGaussian only
}

// Raw returns the uninitialized fill.
func Raw() Fill { return Fill{Kind: FillRaw} }

// Zero returns the zero fill.
func Zero() Fill { return Fill{Kind: FillZero} }

// Gaussian returns a normal fill with standard deviation sigma.
// sigma == 0 selects DefaultSigma.
func Gaussian(sigma float64) Fill {
	if sigma == 0 {
		sigma = DefaultSigma
	}
	return Fill{Kind: FillGaussian, Sigma: sigma}
}

// Sequential returns the deterministic fill where row a of each item holds a.
func Sequential() Fill { return Fill{Kind: FillSequential} }

// NormSource supplies standard normal samples (e.g. *rand.Rand or a session).
type NormSource interface {
	NormFloat64() float64
}

// Validate checks the fill kind and, for Gaussian, that sigma is finite and > 0.
func (f Fill) Validate() error {
	switch f.Kind {
	case FillRaw, FillZero, FillSequential:
		return nil
	case FillGaussian:
		if f.Sigma <= 0 || math.IsNaN(f.Sigma) || math.IsInf(f.Sigma, 0) {
			return fmt.Errorf("sigma %v: %w", f.Sigma, ErrBadFill)
		}
		return nil
	default:
		return fmt.Errorf("kind %d: %w", f.Kind, ErrBadFill)
	}
}

// String names the fill, e.g. "gaussian(0.5)".
func (f Fill) String() string {
	switch f.Kind {
	case FillRaw:
		return "raw"
	case FillZero:
		return "zero"
	case FillGaussian:
		return fmt.Sprintf("gaussian(%g)", f.Sigma)
	case FillSequential:
		return "sequential"
	default:
		return fmt.Sprintf("fill(%d)", f.Kind)
	}
}

// ParseFill maps "raw", "zero", "gaussian" and "sequential" to a Fill.
func ParseFill(name string, sigma float64) (Fill, error) {
	switch name {
	case "raw":
		return Raw(), nil
	case "zero", "":
		return Zero(), nil
	case "gaussian", "normal":
		f := Gaussian(sigma)
		return f, f.Validate()
	case "sequential", "seq":
		return Sequential(), nil
	default:
		return Fill{}, fmt.Errorf("ParseFill(%q): %w", name, ErrBadFill)
	}
}

// apply initializes one item block of extent rows and nc channels.
func (f Fill) apply(block []float64, extent, nc int, src NormSource) {
	switch f.Kind {
	case FillZero:
		clear(block)
	case FillGaussian:
		for i := range block {
			block[i] = f.Sigma * src.NormFloat64()
		}
	case FillSequential:
		for a := 0; a < extent; a++ {
			row := block[a*nc : (a+1)*nc]
			for c := range row {
				row[c] = float64(a)
			}
		}
	}
}
