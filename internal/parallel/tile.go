// Package parallel provides the tile executor that runs per-pixel render
// passes across CPU cores.
//
// An image is split into square tiles (16x16 pixels by default). Each tile
// is one job on the WorkerPool. Tiles cover disjoint pixels, so jobs never
// synchronize with each other: every pixel's buffer entries are written by
// exactly one goroutine.
//
// Thread safety: Tile values are immutable. WorkerPool is safe for
// concurrent use.
package parallel

// DefaultTileSize is the edge length of a tile in pixels, matching the
// 16x16 thread blocks of GPU compute dispatches.
const DefaultTileSize = 16

// Tile is a rectangular block of pixels [X0, X1) x [Y0, Y1).
type Tile struct {
	X0, Y0 int
	X1, Y1 int
}

// Width returns the number of pixel columns in the tile.
func (t Tile) Width() int { return t.X1 - t.X0 }

// Height returns the number of pixel rows in the tile.
func (t Tile) Height() int { return t.Y1 - t.Y0 }

// Pixels returns the number of pixels in the tile.
func (t Tile) Pixels() int { return t.Width() * t.Height() }

// Contains reports whether pixel (x, y) lies in the tile.
func (t Tile) Contains(x, y int) bool {
	return x >= t.X0 && x < t.X1 && y >= t.Y0 && y < t.Y1
}

// Tiles splits a width x height image into tiles of the given size in
// row-major order. Edge tiles are clipped to the image. A size <= 0 selects
// DefaultTileSize.
func Tiles(width, height, size int) []Tile {
	if width <= 0 || height <= 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultTileSize
	}

	tilesX := (width + size - 1) / size
	tilesY := (height + size - 1) / size
	tiles := make([]Tile, 0, tilesX*tilesY)
	for ty := range tilesY {
		for tx := range tilesX {
			tiles = append(tiles, Tile{
				X0: tx * size,
				Y0: ty * size,
				X1: min((tx+1)*size, width),
				Y1: min((ty+1)*size, height),
			})
		}
	}
	return tiles
}

// ForEachPixel runs fn for every pixel of every tile on the pool and waits.
// fn receives the worker index so it can reuse per-worker scratch state.
func ForEachPixel(p *WorkerPool, tiles []Tile, fn func(worker, x, y int)) {
	p.Run(len(tiles), func(worker, i int) {
		t := tiles[i]
		for y := t.Y0; y < t.Y1; y++ {
			for x := t.X0; x < t.X1; x++ {
				fn(worker, x, y)
			}
		}
	})
}
