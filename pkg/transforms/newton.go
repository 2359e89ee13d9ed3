package transforms

// Newton is the relaxed Newton step x -> x - A*f(x)/f'(x).
//
// A scales the numerator only. With A = 1 this is the textbook step.
type Newton struct {
	F  func(complex128) complex128
	DF func(complex128) complex128
	A  complex128
}

// Step advances x given an already computed fx = F(x).
func (n Newton) Step(fx, x complex128) complex128 {
	return x - n.A*fx/n.DF(x)
}

func (n Newton) Next(x complex128) complex128 {
	return n.Step(n.F(x), x)
}

var _ Transform = Newton{}
