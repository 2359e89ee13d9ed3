// Package complexpoly implements the small amount of polynomial algebra the
// Newton renderer needs: evaluation, sums, products, derivatives and
// construction from roots. Coefficients are complex and stored lowest power
// first, so p[0] is the constant term.
package complexpoly

import (
	"strconv"
	"strings"
)

// Poly is a polynomial with complex coefficients. The coefficient at index i
// multiplies x^i. Zero coefficients are kept as given.
type Poly []complex128

// FromReal lifts real coefficients to a Poly.
func FromReal(coeffs ...float64) Poly {
	p := make(Poly, len(coeffs))
	for i, c := range coeffs {
		p[i] = complex(c, 0)
	}
	return p
}

// Degree is len(p)-1. The empty polynomial has degree -1.
func (p Poly) Degree() int {
	return len(p) - 1
}

// Eval returns p(x). The constant term is taken verbatim and terms with a zero
// coefficient contribute nothing.
func Eval(p Poly, x complex128) complex128 {
	if len(p) == 0 {
		return 0
	}

	sum := p[0]
	pow := complex(1, 0)
	for i := 1; i < len(p); i++ {
		pow *= x
		if p[i] == 0 {
			continue
		}
		sum += p[i] * pow
	}
	return sum
}

// Add returns p+q. The shorter operand is added component-wise and the tail of
// the longer one is copied unchanged.
func Add(p, q Poly) Poly {
	shorter, longer := p, q
	if len(q) < len(p) {
		shorter, longer = q, p
	}

	result := make(Poly, len(longer))
	for i := range shorter {
		result[i] = p[i] + q[i]
	}
	copy(result[len(shorter):], longer[len(shorter):])
	return result
}

// Multiply returns p*q as the sum of copies of q, each shifted by i and scaled
// by p[i].
func Multiply(p, q Poly) Poly {
	var result Poly
	for i, a := range p {
		shifted := make(Poly, i+len(q))
		for j, b := range q {
			shifted[i+j] = a * b
		}
		result = Add(result, shifted)
	}
	return result
}

// FromRoots returns the monic polynomial (x - r0)(x - r1)...(x - rn).
func FromRoots(roots []complex128) Poly {
	result := Poly{1}
	for _, r := range roots {
		result = Multiply(result, Poly{-r, 1})
	}
	return result
}

// Derivative returns p'. The derivative of a constant is the empty Poly.
func Derivative(p Poly) Poly {
	if len(p) <= 1 {
		return Poly{}
	}

	d := make(Poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		d[i-1] = complex(float64(i), 0) * p[i]
	}
	return d
}

// Func returns an evaluator bound to a copy of p's coefficients, so later
// changes to p do not affect it.
func (p Poly) Func() func(complex128) complex128 {
	coeffs := make(Poly, len(p))
	copy(coeffs, p)
	return func(x complex128) complex128 {
		return Eval(coeffs, x)
	}
}

// String renders p as a sum of terms such as "-1 + 3*x^3". Zero coefficients
// are skipped.
func (p Poly) String() string {
	terms := make([]string, 0, len(p))
	for i, a := range p {
		if a == 0 {
			continue
		}

		switch {
		case i == 0:
			terms = append(terms, formatCoefficient(a))
		case a == 1 && i == 1:
			terms = append(terms, "x")
		case a == 1:
			terms = append(terms, "x^"+strconv.Itoa(i))
		case i == 1:
			terms = append(terms, formatCoefficient(a)+"*x")
		default:
			terms = append(terms, formatCoefficient(a)+"*x^"+strconv.Itoa(i))
		}
	}
	return strings.Join(terms, " + ")
}

func formatCoefficient(a complex128) string {
	if imag(a) == 0 {
		return strconv.FormatFloat(real(a), 'g', -1, 64)
	}
	return strconv.FormatComplex(a, 'g', -1, 128)
}
