package poly

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vybium/bfstark/internal/bfstark/field"
)

// MultiPoly is a sparse multivariate polynomial over X: a map from
// exponent vectors to coefficients. Grounded on the semantics of
// original_source/code/table_extension.py's use of MPolynomial
// (evaluate, symbolic_degree_bound) — authored fresh in Go idiom since
// no Go analogue survives in the teacher (see poly package doc comment).
type MultiPoly struct {
	// terms maps a canonicalized exponent-vector key to its exponent
	// vector; coefs maps the same key to its coefficient.
	terms map[string][]int
	coefs map[string]field.XElement
}

func expKey(exps []int) string {
	parts := make([]string, len(exps))
	for i, e := range exps {
		parts[i] = strconv.Itoa(e)
	}
	return strings.Join(parts, ",")
}

// NewMultiPoly returns the zero polynomial.
func NewMultiPoly() *MultiPoly {
	return &MultiPoly{terms: map[string][]int{}, coefs: map[string]field.XElement{}}
}

// Constant returns the constant polynomial c.
func Constant(c field.XElement) *MultiPoly {
	m := NewMultiPoly()
	if !c.IsZero() {
		m.setTerm([]int{}, c)
	}
	return m
}

// Variable returns the polynomial x_i within a space of numVars
// variables (x_i has exponent 1 in position i, 0 elsewhere).
func Variable(i, numVars int) *MultiPoly {
	exps := make([]int, numVars)
	exps[i] = 1
	m := NewMultiPoly()
	m.setTerm(exps, field.XOne())
	return m
}

func (m *MultiPoly) setTerm(exps []int, c field.XElement) {
	k := expKey(exps)
	if c.IsZero() {
		delete(m.terms, k)
		delete(m.coefs, k)
		return
	}
	cp := make([]int, len(exps))
	copy(cp, exps)
	m.terms[k] = cp
	m.coefs[k] = c
}

func (m *MultiPoly) addTerm(exps []int, c field.XElement) {
	k := expKey(exps)
	if existing, ok := m.coefs[k]; ok {
		sum := existing.Add(c)
		if sum.IsZero() {
			delete(m.terms, k)
			delete(m.coefs, k)
		} else {
			m.coefs[k] = sum
		}
		return
	}
	if c.IsZero() {
		return
	}
	m.setTerm(exps, c)
}

// Add returns m+o. Does not mutate receiver or operand.
func (m *MultiPoly) Add(o *MultiPoly) *MultiPoly {
	result := NewMultiPoly()
	for k, e := range m.terms {
		result.setTerm(e, m.coefs[k])
	}
	for k, e := range o.terms {
		result.addTerm(e, o.coefs[k])
	}
	return result
}

// Sub returns m-o.
func (m *MultiPoly) Sub(o *MultiPoly) *MultiPoly {
	return m.Add(o.Neg())
}

// Neg returns -m.
func (m *MultiPoly) Neg() *MultiPoly {
	result := NewMultiPoly()
	for k, e := range m.terms {
		result.setTerm(e, m.coefs[k].Neg())
	}
	return result
}

// Mul returns m*o.
func (m *MultiPoly) Mul(o *MultiPoly) *MultiPoly {
	result := NewMultiPoly()
	for k1, e1 := range m.terms {
		c1 := m.coefs[k1]
		for k2, e2 := range o.terms {
			c2 := o.coefs[k2]
			n := len(e1)
			if len(e2) > n {
				n = len(e2)
			}
			exp := make([]int, n)
			for i := 0; i < n; i++ {
				var a, b int
				if i < len(e1) {
					a = e1[i]
				}
				if i < len(e2) {
					b = e2[i]
				}
				exp[i] = a + b
			}
			result.addTerm(exp, c1.Mul(c2))
		}
	}
	return result
}

// Scale returns c*m.
func (m *MultiPoly) Scale(c field.XElement) *MultiPoly {
	result := NewMultiPoly()
	for k, e := range m.terms {
		result.setTerm(e, m.coefs[k].Mul(c))
	}
	return result
}

// IsZero reports whether m has no nonzero terms.
func (m *MultiPoly) IsZero() bool { return len(m.terms) == 0 }

// Evaluate evaluates m at a point in X^n. Fails (per spec.md §4.1) with
// an error mirroring the Python's IndexError when point is shorter than
// the highest variable index referenced.
func (m *MultiPoly) Evaluate(point []field.XElement) (field.XElement, error) {
	result := field.XZero()
	for k, exps := range m.terms {
		c := m.coefs[k]
		term := c
		for i, e := range exps {
			if e == 0 {
				continue
			}
			if i >= len(point) {
				return field.XZero(), fmt.Errorf("poly: evaluation point has %d elements, need at least %d", len(point), i+1)
			}
			term = term.Mul(point[i].Exp(uint64(e)))
		}
		result = result.Add(term)
	}
	return result, nil
}

// EvaluateSymbolic substitutes a univariate polynomial for each variable
// and returns the resulting univariate polynomial, grounded on spec.md
// §4.1's "symbolic evaluation (substituting polynomials for variables)".
func (m *MultiPoly) EvaluateSymbolic(point []UniPoly) (UniPoly, error) {
	result := Zero()
	for k, exps := range m.terms {
		c := m.coefs[k]
		term := UniPoly{Coeffs: []field.XElement{c}}
		for i, e := range exps {
			if e == 0 {
				continue
			}
			if i >= len(point) {
				return Zero(), fmt.Errorf("poly: symbolic point has %d polynomials, need at least %d", len(point), i+1)
			}
			factor := point[i]
			for j := 0; j < e; j++ {
				term = term.Mul(factor)
			}
		}
		result = result.Add(term)
	}
	return result, nil
}

// SymbolicDegreeBound returns the maximum, over all monomials, of the
// total degree implied by substituting a degree-maxDegrees[i] polynomial
// for each variable x_i — grounded on spec.md §4.1's "symbolic degree
// bound".
func (m *MultiPoly) SymbolicDegreeBound(maxDegrees []int) int {
	bound := 0
	for _, exps := range m.terms {
		total := 0
		for i, e := range exps {
			if e == 0 {
				continue
			}
			d := 0
			if i < len(maxDegrees) {
				d = maxDegrees[i]
			}
			total += e * d
		}
		if total > bound {
			bound = total
		}
	}
	return bound
}

// NumTerms returns the number of nonzero monomials, useful for tests.
func (m *MultiPoly) NumTerms() int { return len(m.terms) }
