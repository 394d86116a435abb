package raymarch

import (
	"fmt"
	"math"
)

// DefaultTableSize is the number of lookup entries built for a named palette.
const DefaultTableSize = 256

// Coloring maps scalar values to RGBA through a lookup table.
//
// A Coloring is either a palette over [vmin, vmax] or a single solid color.
// The opaque flag selects between the opaque and the order-independent
// transparent code paths of every render pass.
//
// Coloring values are immutable after construction and safe for concurrent
// use.
type Coloring struct {
	vmin, vmax float64
	table      []RGBA
	nanColor   RGBA
	opaque     bool
	solid      bool
	name       string
}

// ColoringOption configures a Coloring during construction.
type ColoringOption func(*coloringOptions)

type coloringOptions struct {
	tableSize    int
	opacity      *float64
	opacityTable []float64
	nanColor     RGBA
}

func defaultColoringOptions() coloringOptions {
	return coloringOptions{
		tableSize: DefaultTableSize,
		nanColor:  Yellow,
	}
}

// WithOpacity sets one alpha for every table entry. An opacity of exactly 1
// keeps the coloring opaque; anything below makes it transparent.
func WithOpacity(alpha float64) ColoringOption {
	return func(o *coloringOptions) {
		o.opacity = &alpha
		o.opacityTable = nil
	}
}

// WithOpacityTable sets a per-entry alpha. The table must have one value per
// lookup entry. A coloring with an opacity table is always transparent.
func WithOpacityTable(alphas []float64) ColoringOption {
	return func(o *coloringOptions) {
		o.opacityTable = append([]float64(nil), alphas...)
		o.opacity = nil
	}
}

// WithNaNColor sets the color returned for NaN samples. Its alpha is the
// NaN opacity.
func WithNaNColor(c RGBA) ColoringOption {
	return func(o *coloringOptions) {
		o.nanColor = c
	}
}

// WithTableSize sets the number of lookup entries for a named palette.
func WithTableSize(n int) ColoringOption {
	return func(o *coloringOptions) {
		o.tableSize = n
	}
}

// NewColormap builds a Coloring from a registered palette over [vmin, vmax].
func NewColormap(name string, vmin, vmax float64, opts ...ColoringOption) (*Coloring, error) {
	o := defaultColoringOptions()
	for _, opt := range opts {
		opt(&o)
	}
	table, err := Palette(name, o.tableSize)
	if err != nil {
		return nil, fmt.Errorf("colormap %q: %w", name, err)
	}
	c, err := newTableColoring(table, vmin, vmax, o)
	if err != nil {
		return nil, fmt.Errorf("colormap %q: %w", name, err)
	}
	c.name = name
	return c, nil
}

// NewTableColoring builds a Coloring from an explicit lookup table over
// [vmin, vmax]. The table alphas are kept unless an opacity option replaces
// them; any alpha below 1 makes the coloring transparent.
func NewTableColoring(table []RGBA, vmin, vmax float64, opts ...ColoringOption) (*Coloring, error) {
	o := defaultColoringOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newTableColoring(append([]RGBA(nil), table...), vmin, vmax, o)
}

func newTableColoring(table []RGBA, vmin, vmax float64, o coloringOptions) (*Coloring, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: empty lookup table", ErrInvalidColoring)
	}
	if math.IsNaN(vmin) || math.IsNaN(vmax) || vmin >= vmax {
		return nil, fmt.Errorf("%w: range [%g, %g]", ErrInvalidColoring, vmin, vmax)
	}
	if !validAlpha(o.nanColor.A) {
		return nil, fmt.Errorf("%w: nan opacity %g", ErrInvalidColoring, o.nanColor.A)
	}

	opaque := true
	switch {
	case o.opacity != nil:
		a := *o.opacity
		if !validAlpha(a) {
			return nil, fmt.Errorf("%w: opacity %g outside [0, 1]", ErrInvalidColoring, a)
		}
		for i := range table {
			table[i].A = a
		}
		opaque = a == 1
	case o.opacityTable != nil:
		if len(o.opacityTable) != len(table) {
			return nil, fmt.Errorf("%w: %d opacity values for %d table entries",
				ErrInvalidColoring, len(o.opacityTable), len(table))
		}
		for i, a := range o.opacityTable {
			if !validAlpha(a) {
				return nil, fmt.Errorf("%w: opacity[%d] = %g outside [0, 1]", ErrInvalidColoring, i, a)
			}
			table[i].A = a
		}
		opaque = false
	default:
		for _, c := range table {
			if c.A != 1 {
				opaque = false
				break
			}
		}
	}

	return &Coloring{
		vmin:     vmin,
		vmax:     vmax,
		table:    table,
		nanColor: o.nanColor,
		opaque:   opaque,
	}, nil
}

// NewSolidColor builds a Coloring that returns c for every value.
// It is opaque iff opacity is exactly 1.
func NewSolidColor(c RGBA, opacity float64) (*Coloring, error) {
	if !validAlpha(opacity) {
		return nil, fmt.Errorf("%w: opacity %g outside [0, 1]", ErrInvalidColoring, opacity)
	}
	c.A = opacity
	return &Coloring{
		vmin:     0,
		vmax:     1,
		table:    []RGBA{c},
		nanColor: c,
		opaque:   opacity == 1,
		solid:    true,
	}, nil
}

// MustSolidColor is like NewSolidColor but panics on invalid opacity.
func MustSolidColor(c RGBA, opacity float64) *Coloring {
	col, err := NewSolidColor(c, opacity)
	if err != nil {
		panic(err)
	}
	return col
}

func validAlpha(a float64) bool {
	return a >= 0 && a <= 1
}

// Lookup maps a scalar to a color. Values are clamped to [vmin, vmax] and
// truncated to a table index; NaN maps to the NaN color.
func (c *Coloring) Lookup(v float64) RGBA {
	if c.solid {
		return c.table[0]
	}
	if math.IsNaN(v) {
		return c.nanColor
	}
	v = Clamp(v, c.vmin, c.vmax)
	idx := int((v - c.vmin) / (c.vmax - c.vmin) * float64(len(c.table)-1))
	return c.table[idx]
}

// Opaque reports whether the coloring takes the opaque code path.
func (c *Coloring) Opaque() bool { return c.opaque }

// Solid reports whether the coloring is a single solid color.
func (c *Coloring) Solid() bool { return c.solid }

// Range returns the value range mapped onto the table.
func (c *Coloring) Range() (vmin, vmax float64) { return c.vmin, c.vmax }

// NaNColor returns the color used for NaN samples.
func (c *Coloring) NaNColor() RGBA { return c.nanColor }

// Name returns the palette name, or "" for table and solid colorings.
func (c *Coloring) Name() string { return c.name }

// Table returns a copy of the lookup table.
func (c *Coloring) Table() []RGBA {
	return append([]RGBA(nil), c.table...)
}

// Len returns the number of lookup entries.
func (c *Coloring) Len() int { return len(c.table) }

// String implements fmt.Stringer.
func (c *Coloring) String() string {
	switch {
	case c.solid:
		return fmt.Sprintf("Solid(%.3g,%.3g,%.3g a=%.3g)", c.table[0].R, c.table[0].G, c.table[0].B, c.table[0].A)
	case c.name != "":
		return fmt.Sprintf("Colormap(%s [%g, %g] n=%d opaque=%t)", c.name, c.vmin, c.vmax, len(c.table), c.opaque)
	default:
		return fmt.Sprintf("Table([%g, %g] n=%d opaque=%t)", c.vmin, c.vmax, len(c.table), c.opaque)
	}
}

// autoColormap builds the default "jet" coloring over the finite range of g.
// A constant or empty range is widened to one unit so the coloring stays
// valid.
func autoColormap(g *Grid, opts ...ColoringOption) (*Coloring, error) {
	lo, hi := g.Range()
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		lo, hi = 0, 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	return NewColormap("jet", lo, hi, opts...)
}

// autoVolumeColoring is the default volume coloring. A field whose finite
// values do not span a range has no structure to show and gets a fully
// transparent coloring, so it leaves the buffer untouched.
func autoVolumeColoring(g *Grid) (*Coloring, error) {
	if lo, hi := g.Range(); !(hi > lo) {
		return autoColormap(g, WithOpacity(0), WithNaNColor(Yellow.WithAlpha(0)))
	}
	return autoColormap(g)
}
