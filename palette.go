package raymarch

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"sync"

	"cogentcore.org/core/colors"
	"cogentcore.org/core/colors/colormap"

	"github.com/gogpu/raymarch/internal/cache"
)

// PaletteFunc builds an n-entry lookup table. Entries are opaque; opacity
// is applied afterwards by the Coloring that consumes the table.
type PaletteFunc func(n int) []RGBA

var (
	paletteMu sync.RWMutex
	palettes  = map[string]PaletteFunc{}

	// paletteTables holds sampled tables of the built-in maps, keyed by
	// "name/n". Cached tables are shared and copied out on every use.
	paletteTables = cache.NewSharded[string, []RGBA](16, cache.StringHasher)
)

// builtinMaps are the matplotlib palettes, as evenly spaced RGB stops.
// Every map in colormap.AvailableMaps is available as well, under its
// cogentcore name ("ColdHot", "Jet", ...).
var builtinMaps = map[string]*colormap.Map{
	"jet": {
		Name:  "jet",
		Blend: colors.RGB,
		Colors: []color.RGBA{
			{0, 0, 128, 255}, {0, 0, 255, 255}, {0, 128, 255, 255},
			{21, 255, 226, 255}, {124, 255, 124, 255}, {226, 255, 21, 255},
			{255, 151, 0, 255}, {255, 33, 0, 255}, {128, 0, 0, 255},
		},
	},
	"hot": {
		Name:  "hot",
		Blend: colors.RGB,
		Colors: []color.RGBA{
			{11, 0, 0, 255}, {94, 0, 0, 255}, {178, 0, 0, 255},
			{255, 7, 0, 255}, {255, 90, 0, 255}, {255, 174, 0, 255},
			{255, 255, 4, 255}, {255, 255, 130, 255}, {255, 255, 255, 255},
		},
	},
	"copper": {
		Name:  "copper",
		Blend: colors.RGB,
		Colors: []color.RGBA{
			{0, 0, 0, 255}, {64, 40, 25, 255}, {128, 80, 51, 255},
			{191, 120, 76, 255}, {255, 159, 101, 255}, {255, 199, 127, 255},
		},
	},
	"gray": {
		Name:   "gray",
		Blend:  colors.RGB,
		Colors: []color.RGBA{{0, 0, 0, 255}, {255, 255, 255, 255}},
	},
	"cool": {
		Name:   "cool",
		Blend:  colors.RGB,
		Colors: []color.RGBA{{0, 255, 255, 255}, {255, 0, 255, 255}},
	},
}

// RegisterPalette adds or replaces a named palette. A registered palette
// takes precedence over a built-in map of the same name.
func RegisterPalette(name string, fn PaletteFunc) {
	paletteMu.Lock()
	defer paletteMu.Unlock()
	palettes[name] = fn
}

// Palette returns an n-entry lookup table for the named palette.
func Palette(name string, n int) ([]RGBA, error) {
	if n < 1 {
		return nil, fmt.Errorf("palette %q with %d entries: %w", name, n, ErrInvalidColoring)
	}

	paletteMu.RLock()
	fn, ok := palettes[name]
	paletteMu.RUnlock()
	if ok {
		table := fn(n)
		if len(table) != n {
			return nil, fmt.Errorf("palette %q returned %d entries, want %d: %w", name, len(table), n, ErrInvalidColoring)
		}
		return table, nil
	}

	m, ok := lookupMap(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
	}
	table := paletteTables.GetOrCreate(name+"/"+strconv.Itoa(n), func() []RGBA {
		return sampleMap(m, n)
	})
	return append([]RGBA(nil), table...), nil
}

// PaletteNames returns every available palette name in sorted order.
func PaletteNames() []string {
	seen := make(map[string]bool)
	paletteMu.RLock()
	for name := range palettes {
		seen[name] = true
	}
	paletteMu.RUnlock()
	for name := range builtinMaps {
		seen[name] = true
	}
	for _, name := range colormap.AvailableMapsList() {
		seen[name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupMap(name string) (*colormap.Map, bool) {
	if m, ok := builtinMaps[name]; ok {
		return m, true
	}
	m, ok := colormap.AvailableMaps[name]
	return m, ok && m != nil && len(m.Colors) > 0
}

// sampleMap evaluates m at n evenly spaced positions in [0, 1].
func sampleMap(m *colormap.Map, n int) []RGBA {
	table := make([]RGBA, n)
	for i := range table {
		var x float32
		if n > 1 {
			x = float32(i) / float32(n-1)
		}
		c := FromColor(m.Map(x))
		c.A = 1
		table[i] = c
	}
	return table
}
