// Package poly implements univariate and sparse multivariate polynomials
// over the cubic extension field X, grounded on
// internal/vybium-starks-vm/core/polynomial.go (UniPoly) and, for
// MultiPoly, on original_source/code/table_extension.py's use of
// MPolynomial (no Go analogue exists in the teacher — its
// protocols/constraints.go uses closure-based Evaluator funcs instead,
// and core/polynomial_extended.go's EvaluateMultiple is an explicit
// stub, so MultiPoly here is authored fresh against the Python
// semantics rather than adapted from a Go source).
package poly

import (
	"fmt"

	"github.com/vybium/bfstark/internal/bfstark/field"
)

// UniPoly is a dense univariate polynomial over X, coefficients ordered
// low-degree first. The zero polynomial is represented by an empty slice.
type UniPoly struct {
	Coeffs []field.XElement
}

// NewUniPoly trims trailing (high-degree) zero coefficients.
func NewUniPoly(coeffs []field.XElement) UniPoly {
	n := len(coeffs)
	for n > 0 && coeffs[n-1].IsZero() {
		n--
	}
	out := make([]field.XElement, n)
	copy(out, coeffs[:n])
	return UniPoly{Coeffs: out}
}

// Zero is the additive-identity polynomial.
func Zero() UniPoly { return UniPoly{} }

// Degree returns -1 for the zero polynomial, else the highest nonzero
// coefficient's index.
func (p UniPoly) Degree() int { return len(p.Coeffs) - 1 }

func (p UniPoly) IsZero() bool { return len(p.Coeffs) == 0 }

func (p UniPoly) Coeff(i int) field.XElement {
	if i < 0 || i >= len(p.Coeffs) {
		return field.XZero()
	}
	return p.Coeffs[i]
}

// Add returns p+q.
func (p UniPoly) Add(q UniPoly) UniPoly {
	n := len(p.Coeffs)
	if len(q.Coeffs) > n {
		n = len(q.Coeffs)
	}
	out := make([]field.XElement, n)
	for i := 0; i < n; i++ {
		out[i] = p.Coeff(i).Add(q.Coeff(i))
	}
	return NewUniPoly(out)
}

// Sub returns p-q.
func (p UniPoly) Sub(q UniPoly) UniPoly {
	n := len(p.Coeffs)
	if len(q.Coeffs) > n {
		n = len(q.Coeffs)
	}
	out := make([]field.XElement, n)
	for i := 0; i < n; i++ {
		out[i] = p.Coeff(i).Sub(q.Coeff(i))
	}
	return NewUniPoly(out)
}

// Neg returns -p.
func (p UniPoly) Neg() UniPoly {
	out := make([]field.XElement, len(p.Coeffs))
	for i, c := range p.Coeffs {
		out[i] = c.Neg()
	}
	return UniPoly{Coeffs: out}
}

// Mul returns p*q via schoolbook convolution, grounded on
// core/polynomial.go's Mul.
func (p UniPoly) Mul(q UniPoly) UniPoly {
	if p.IsZero() || q.IsZero() {
		return Zero()
	}
	out := make([]field.XElement, len(p.Coeffs)+len(q.Coeffs)-1)
	for i := range out {
		out[i] = field.XZero()
	}
	for i, a := range p.Coeffs {
		if a.IsZero() {
			continue
		}
		for j, b := range q.Coeffs {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return NewUniPoly(out)
}

// ScaleX returns p(alpha*x): p with its i-th coefficient multiplied by
// alpha^i, grounded on spec.md §4.1's "scaling (p(αx))".
func (p UniPoly) ScaleX(alpha field.XElement) UniPoly {
	out := make([]field.XElement, len(p.Coeffs))
	pow := field.XOne()
	for i, c := range p.Coeffs {
		out[i] = c.Mul(pow)
		pow = pow.Mul(alpha)
	}
	return NewUniPoly(out)
}

// MulScalar returns c*p.
func (p UniPoly) MulScalar(c field.XElement) UniPoly {
	out := make([]field.XElement, len(p.Coeffs))
	for i, a := range p.Coeffs {
		out[i] = a.Mul(c)
	}
	return NewUniPoly(out)
}

// MulXPow returns x^k * p (shifts coefficients up by k). The STARK
// engine combines quotients without x^shift terms and does not call it.
func (p UniPoly) MulXPow(k int) UniPoly {
	if p.IsZero() || k == 0 {
		return p
	}
	out := make([]field.XElement, len(p.Coeffs)+k)
	for i := range out {
		out[i] = field.XZero()
	}
	copy(out[k:], p.Coeffs)
	return UniPoly{Coeffs: out}
}

// Eval evaluates p(x) via Horner's method.
func (p UniPoly) Eval(x field.XElement) field.XElement {
	result := field.XZero()
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(p.Coeffs[i])
	}
	return result
}

// Div performs Euclidean division, returning (quotient, remainder) such
// that p = quotient*divisor + remainder and deg(remainder) < deg(divisor).
// Grounded on core/polynomial.go's Div (long division), generalized to X.
func (p UniPoly) Div(divisor UniPoly) (UniPoly, UniPoly, error) {
	if divisor.IsZero() {
		return Zero(), Zero(), fmt.Errorf("poly: division by zero polynomial")
	}
	if p.Degree() < divisor.Degree() {
		return Zero(), p, nil
	}

	remainder := make([]field.XElement, len(p.Coeffs))
	copy(remainder, p.Coeffs)
	lead := divisor.Coeffs[len(divisor.Coeffs)-1]
	leadInv := lead.Inv()

	qDeg := p.Degree() - divisor.Degree()
	quotient := make([]field.XElement, qDeg+1)
	for i := qDeg; i >= 0; i-- {
		rDeg := divisor.Degree() + i
		if rDeg >= len(remainder) || remainder[rDeg].IsZero() {
			quotient[i] = field.XZero()
			continue
		}
		coeff := remainder[rDeg].Mul(leadInv)
		quotient[i] = coeff
		for j, dc := range divisor.Coeffs {
			remainder[i+j] = remainder[i+j].Sub(coeff.Mul(dc))
		}
	}
	return NewUniPoly(quotient), NewUniPoly(remainder), nil
}

// DivExact divides and requires a zero remainder — the common case in
// this engine's quotient computations (dividing out a zerofier exactly).
func (p UniPoly) DivExact(divisor UniPoly) (UniPoly, error) {
	q, r, err := p.Div(divisor)
	if err != nil {
		return Zero(), err
	}
	if !r.IsZero() {
		return Zero(), fmt.Errorf("poly: division left nonzero remainder (degree %d)", r.Degree())
	}
	return q, nil
}

// ZerofierDomain returns the monic polynomial vanishing on every point in
// domain: prod(x - d_i), grounded on spec.md §4.1's zerofier_domain
// constructor.
func ZerofierDomain(domain []field.XElement) UniPoly {
	result := UniPoly{Coeffs: []field.XElement{field.XOne()}}
	for _, d := range domain {
		// multiply by (x - d)
		factor := UniPoly{Coeffs: []field.XElement{d.Neg(), field.XOne()}}
		result = result.Mul(factor)
	}
	return result
}

// LagrangeInterpolate builds the unique minimal-degree polynomial through
// the given (x,y) pairs, grounded on core/polynomial.go's
// LagrangeInterpolation, generalized to X.
func LagrangeInterpolate(xs, ys []field.XElement) (UniPoly, error) {
	if len(xs) != len(ys) {
		return Zero(), fmt.Errorf("poly: mismatched point counts")
	}
	if len(xs) == 0 {
		return Zero(), fmt.Errorf("poly: no points provided")
	}
	result := Zero()
	for i := range xs {
		numerator := UniPoly{Coeffs: []field.XElement{field.XOne()}}
		denom := field.XOne()
		for j := range xs {
			if i == j {
				continue
			}
			if xs[i].Equal(xs[j]) {
				return Zero(), fmt.Errorf("poly: duplicate x-coordinate at %d,%d", i, j)
			}
			factor := UniPoly{Coeffs: []field.XElement{xs[j].Neg(), field.XOne()}}
			numerator = numerator.Mul(factor)
			denom = denom.Mul(xs[i].Sub(xs[j]))
		}
		term := numerator.MulScalar(ys[i].Mul(denom.Inv()))
		result = result.Add(term)
	}
	return result, nil
}

// Clone returns a defensive copy.
func (p UniPoly) Clone() UniPoly {
	out := make([]field.XElement, len(p.Coeffs))
	copy(out, p.Coeffs)
	return UniPoly{Coeffs: out}
}
