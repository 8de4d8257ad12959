package field

import "fmt"

// FFT evaluates the polynomial given by coefficients (low-to-high, over
// X) at the n-th roots of unity generated by omega, where n = len(coeffs)
// must be a power of two and omega must have order n. Grounded on
// core/polynomial_barycentric.go's FFT (Cooley-Tukey, bit-reversal
// permutation then iterative butterflies), generalized from *FieldElement
// to XElement.
func FFT(coeffs []XElement, omega Element) ([]XElement, error) {
	n := len(coeffs)
	if n == 0 {
		return nil, nil
	}
	if !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("field: FFT requires power-of-two size, got %d", n)
	}

	result := make([]XElement, n)
	copy(result, coeffs)

	logN := Log2(n)
	for i := 0; i < n; i++ {
		j := reverseBits(i, logN)
		if i < j {
			result[i], result[j] = result[j], result[i]
		}
	}

	for s := 1; s <= logN; s++ {
		m := 1 << s
		half := m >> 1
		wm := omega.Exp(uint64(n / m))
		for k := 0; k < n; k += m {
			w := One()
			for j := 0; j < half; j++ {
				t := result[k+j+half].MulF(w)
				u := result[k+j]
				result[k+j] = u.Add(t)
				result[k+j+half] = u.Sub(t)
				w = w.Mul(wm)
			}
		}
	}
	return result, nil
}

// IFFT is the inverse of FFT: given evaluations on the n-th roots of
// unity generated by omega, recover the coefficient form.
func IFFT(values []XElement, omega Element) ([]XElement, error) {
	n := len(values)
	if n == 0 {
		return nil, nil
	}
	omegaInv := omega.Inv()
	coeffs, err := FFT(values, omegaInv)
	if err != nil {
		return nil, err
	}
	nInv := New(uint64(n)).Inv()
	for i := range coeffs {
		coeffs[i] = coeffs[i].MulF(nInv)
	}
	return coeffs, nil
}

func reverseBits(n, bitLength int) int {
	result := 0
	for i := 0; i < bitLength; i++ {
		if n&(1<<i) != 0 {
			result |= 1 << (bitLength - 1 - i)
		}
	}
	return result
}

// CosetEvaluate evaluates a polynomial (coefficients low-to-high) on the
// coset {offset * omega^i : i=0..N-1}. It pads the coefficient slice with
// zeros up to N, scales by powers of offset, then runs FFT — the coset
// generalization of core/polynomial_barycentric.go's FFT, matching
// spec.md §4.2's evaluate(p, coset_offset, omega, N).
func CosetEvaluate(coeffs []XElement, offset Element, omega Element, n int) ([]XElement, error) {
	if len(coeffs) > n {
		return nil, fmt.Errorf("field: polynomial degree exceeds domain size %d", n)
	}
	scaled := make([]XElement, n)
	p := One()
	for i := 0; i < n; i++ {
		if i < len(coeffs) {
			scaled[i] = coeffs[i].MulF(p)
		} else {
			scaled[i] = XZero()
		}
		p = p.Mul(offset)
	}
	return FFT(scaled, omega)
}

// CosetInterpolate is the inverse of CosetEvaluate: given N evaluations
// on the coset {offset*omega^i}, recover the coefficient form.
func CosetInterpolate(values []XElement, offset Element, omega Element) ([]XElement, error) {
	coeffs, err := IFFT(values, omega)
	if err != nil {
		return nil, err
	}
	offsetInv := offset.Inv()
	p := One()
	for i := range coeffs {
		coeffs[i] = coeffs[i].MulF(p)
		p = p.Mul(offsetInv)
	}
	return coeffs, nil
}
