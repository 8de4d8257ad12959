package field

import "fmt"

// Domain is a coset {Offset * Generator^i : i=0..Length-1} of a
// multiplicative subgroup of F*, grounded on
// protocols/domains.go's ArithmeticDomain — but without that file's
// Triton-specific Halve/Double (tableDomain in stark/params.go
// derives each table's domains directly from its height instead of via
// halving relationships).
type Domain struct {
	Offset    Element
	Generator Element
	Length    int
}

// NewDomain builds the coset of the given length, offset, and primitive
// root of unity.
func NewDomain(length int, offset Element) (*Domain, error) {
	if !IsPowerOfTwo(length) {
		return nil, fmt.Errorf("field: domain length must be power of two, got %d", length)
	}
	gen, err := PrimitiveRootOfUnity(uint64(length))
	if err != nil {
		return nil, err
	}
	return &Domain{Offset: offset, Generator: gen, Length: length}, nil
}

// Elements enumerates the domain.
func (d *Domain) Elements() []Element {
	out := make([]Element, d.Length)
	cur := d.Offset
	for i := 0; i < d.Length; i++ {
		out[i] = cur
		cur = cur.Mul(d.Generator)
	}
	return out
}

// At returns the i-th domain element, offset*generator^i, without
// materializing the whole domain.
func (d *Domain) At(i int) Element {
	return d.Offset.Mul(d.Generator.Exp(uint64(i)))
}
