// Package transforms holds the point iterations the fractals are built from.
package transforms

// A Transform iterates a passed point.
type Transform interface {
	Next(z complex128) complex128
}
