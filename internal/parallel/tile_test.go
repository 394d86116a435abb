package parallel

import (
	"sync/atomic"
	"testing"
)

func TestTiles(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		size          int
		wantCount     int
		wantLast      Tile
	}{
		{"exact", 32, 32, 16, 4, Tile{16, 16, 32, 32}},
		{"clipped", 40, 20, 16, 6, Tile{32, 16, 40, 20}},
		{"default size", 640, 480, 0, 40 * 30, Tile{624, 464, 640, 480}},
		{"single pixel", 1, 1, 16, 1, Tile{0, 0, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := Tiles(tt.width, tt.height, tt.size)
			if len(tiles) != tt.wantCount {
				t.Fatalf("len(Tiles()) = %d, want %d", len(tiles), tt.wantCount)
			}
			if last := tiles[len(tiles)-1]; last != tt.wantLast {
				t.Errorf("last tile = %+v, want %+v", last, tt.wantLast)
			}
		})
	}
}

func TestTilesEmpty(t *testing.T) {
	if got := Tiles(0, 10, 16); got != nil {
		t.Errorf("Tiles(0, 10) = %v, want nil", got)
	}
	if got := Tiles(10, -1, 16); got != nil {
		t.Errorf("Tiles(10, -1) = %v, want nil", got)
	}
}

func TestTilesCoverImageExactlyOnce(t *testing.T) {
	const w, h = 53, 37
	cover := make([]int, w*h)
	for _, tile := range Tiles(w, h, 16) {
		for y := tile.Y0; y < tile.Y1; y++ {
			for x := tile.X0; x < tile.X1; x++ {
				cover[y*w+x]++
			}
		}
	}
	for i, c := range cover {
		if c != 1 {
			t.Fatalf("pixel (%d, %d) covered %d times", i%w, i/w, c)
		}
	}
}

func TestTileAccessors(t *testing.T) {
	tile := Tile{X0: 16, Y0: 32, X1: 24, Y1: 48}
	if tile.Width() != 8 || tile.Height() != 16 || tile.Pixels() != 128 {
		t.Errorf("size = %dx%d (%d px), want 8x16 (128 px)", tile.Width(), tile.Height(), tile.Pixels())
	}
	if !tile.Contains(16, 32) || tile.Contains(24, 32) || tile.Contains(16, 48) {
		t.Error("Contains() disagrees with half-open bounds")
	}
}

func TestForEachPixel(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	const w, h = 70, 45
	hits := make([]atomic.Int32, w*h)
	ForEachPixel(pool, Tiles(w, h, 16), func(_, x, y int) {
		hits[y*w+x].Add(1)
	})
	for i := range hits {
		if hits[i].Load() != 1 {
			t.Fatalf("pixel %d visited %d times, want 1", i, hits[i].Load())
		}
	}
}
