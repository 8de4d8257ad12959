// Package stark orchestrates the five trace tables, their extensions,
// and FRI into the end-to-end prove/verify protocol of spec.md §4.9
// and §4.10, grounded step-for-step on
// original_source/code/brainfuck_stark.py's prove() and on
// table_extension.py's evaluate_* methods for the verifier side
// (protocols/verifier.go is a structural stub only, not grounding
// material).
package stark

import (
	"fmt"

	"github.com/vybium/bfstark/internal/bfstark/bferr"
	"github.com/vybium/bfstark/internal/bfstark/field"
)

// Config is the public STARK configuration, grounded on
// protocols/stark.go's STARKParameters.
type Config struct {
	ExpansionFactor      int
	NumColinearityChecks int
	MaxCycles            int
	Debug                bool
}

// DefaultConfig matches the teacher's DefaultConfig security/size
// trade-off in spirit: a modest expansion factor and enough
// colinearity checks for a convincing demonstration-grade security
// level (spec.md explicitly treats the exact bit-security target as
// out of scope).
func DefaultConfig() Config {
	return Config{
		ExpansionFactor:      8,
		NumColinearityChecks: 20,
		MaxCycles:            1 << 20,
	}
}

func (c Config) Validate() error {
	if !field.IsPowerOfTwo(c.ExpansionFactor) || c.ExpansionFactor < 4 {
		return bferr.New(bferr.KindConfigError, "expansion factor must be a power of two >= 4")
	}
	if c.NumColinearityChecks <= 0 {
		return bferr.New(bferr.KindConfigError, "num colinearity checks must be positive")
	}
	if c.MaxCycles <= 0 {
		return bferr.New(bferr.KindConfigError, "max cycles must be positive")
	}
	return nil
}

// tableDomain derives the FRI evaluation domain for a table of the
// given (unpadded) height: round up to a power of two, add the
// zero-knowledge randomizer rows, then size the FRI domain generously
// above that so every quotient codeword fits with room for the
// expansion factor. This trades a bit of proof size for not having to
// reproduce brainfuck_stark.py's exact per-quotient degree-bound
// arithmetic (over-provisioning the domain cannot break soundness).
func tableDomain(height int, cfg Config) (roundedLength, numRandomizers, friDomainLength int, offset, friOffset field.Element, err error) {
	if height <= 0 {
		return 0, 0, 0, field.Element{}, field.Element{}, fmt.Errorf("stark: table has zero rows")
	}
	roundedLength = field.NextPowerOfTwo(height)
	numRandomizers = 4 * cfg.NumColinearityChecks
	randomizedLength := roundedLength + numRandomizers
	friDomainLength = field.NextPowerOfTwo(randomizedLength * cfg.ExpansionFactor * 8)
	if friDomainLength%roundedLength != 0 {
		return 0, 0, 0, field.Element{}, field.Element{}, fmt.Errorf("stark: FRI domain length %d not a multiple of trace length %d", friDomainLength, roundedLength)
	}
	g := field.New(field.Generator)
	offset = g.Mul(g) // generator^2, grounded on brainfuck_stark.py's interpolation coset.
	friOffset = g
	return
}
