// Package cliflag holds pflag values the commands need beyond pflag's
// built-in types.
//
// Complex numbers use Go syntax as accepted by strconv.ParseComplex: "1",
// "-0.5+0.866i", "(2i)". Lists are comma-separated and may be repeated.
package cliflag

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

var (
	_ pflag.Value      = (*Complex)(nil)
	_ pflag.SliceValue = (*ComplexSlice)(nil)
	_ pflag.Value      = (*Level)(nil)
)

func parseComplex(s string) (complex128, error) {
	c, err := strconv.ParseComplex(strings.TrimSpace(s), 128)
	if err != nil {
		return 0, fmt.Errorf("invalid complex number %q", s)
	}
	return c, nil
}

func formatComplex(c complex128) string {
	if imag(c) == 0 {
		return strconv.FormatFloat(real(c), 'g', -1, 64)
	}
	return strconv.FormatComplex(c, 'g', -1, 128)
}

// Complex is a complex128 flag.
type Complex struct {
	p *complex128
}

func NewComplex(p *complex128, value complex128) *Complex {
	*p = value
	return &Complex{p: p}
}

func (c *Complex) Set(s string) error {
	v, err := parseComplex(s)
	if err != nil {
		return err
	}
	*c.p = v
	return nil
}

func (c *Complex) String() string {
	if c.p == nil {
		return "0"
	}
	return formatComplex(*c.p)
}

func (c *Complex) Type() string {
	return "complex"
}

// ComplexSlice is a repeatable list of complex numbers. The first Set
// replaces the default.
type ComplexSlice struct {
	p       *[]complex128
	changed bool
}

func NewComplexSlice(p *[]complex128, value []complex128) *ComplexSlice {
	*p = value
	return &ComplexSlice{p: p}
}

func (c *ComplexSlice) Set(s string) error {
	var vs []complex128
	for _, part := range strings.Split(s, ",") {
		v, err := parseComplex(part)
		if err != nil {
			return err
		}
		vs = append(vs, v)
	}

	if !c.changed {
		*c.p = vs
		c.changed = true
	} else {
		*c.p = append(*c.p, vs...)
	}
	return nil
}

func (c *ComplexSlice) String() string {
	if c.p == nil {
		return "[]"
	}
	return "[" + strings.Join(c.GetSlice(), ",") + "]"
}

func (c *ComplexSlice) Type() string {
	return "complexSlice"
}

func (c *ComplexSlice) Append(s string) error {
	v, err := parseComplex(s)
	if err != nil {
		return err
	}
	*c.p = append(*c.p, v)
	return nil
}

func (c *ComplexSlice) Replace(ss []string) error {
	vs := make([]complex128, len(ss))
	for i, s := range ss {
		v, err := parseComplex(s)
		if err != nil {
			return err
		}
		vs[i] = v
	}
	*c.p = vs
	return nil
}

func (c *ComplexSlice) GetSlice() []string {
	out := make([]string, len(*c.p))
	for i, v := range *c.p {
		out[i] = formatComplex(v)
	}
	return out
}

// Level is a slog.Level flag accepting debug, info, warn, error and offsets
// such as "debug-2".
type Level struct {
	p *slog.Level
}

func NewLevel(p *slog.Level, value slog.Level) *Level {
	*p = value
	return &Level{p: p}
}

func (l *Level) Set(s string) error {
	return l.p.UnmarshalText([]byte(s))
}

func (l *Level) String() string {
	if l.p == nil {
		return slog.LevelInfo.String()
	}
	return l.p.String()
}

func (l *Level) Type() string {
	return "level"
}
