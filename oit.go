package raymarch

// Weighted blended order-independent transparency.
//
// Transparent fragments are folded into two planes regardless of arrival
// order: a weighted color sum and a revealage product. Compositing uses
// alpha = 1 - revealage and the color sum as is; it is never divided by
// the accumulated weight.

// OITWeight returns the depth weight 1/((distance/maxDepth)² + 1). It lies
// in (0, 1] and decreases with distance.
func OITWeight(distance, maxDepth float64) float64 {
	d := distance / maxDepth
	return 1 / (d*d + 1)
}

// blend folds one transparent fragment into pixel i:
//
//	accum     += rgb · weight · alpha · gain
//	revealage *= 1 - clamp(alpha · weight · cover, 0, 1)
//
// Surfaces pass gain = shading intensity and cover = 1; the volume pass
// passes its step size for both so absorption is step-size independent.
func (b *ScreenBuffer) blend(i int, c RGBA, weight, gain, cover float64) {
	k := weight * c.A * gain
	b.accum[i*3] += float32(c.R * k)
	b.accum[i*3+1] += float32(c.G * k)
	b.accum[i*3+2] += float32(c.B * k)
	b.revealage[i] *= float32(1 - Clamp(c.A*weight*cover, 0, 1))
}

// writeOpaque stores an opaque surface hit in pixel i.
func (b *ScreenBuffer) writeOpaque(i int, c RGBA, intensity, depth float64, normal Vec3) {
	b.opaque[i*3] = float32(c.R * intensity)
	b.opaque[i*3+1] = float32(c.G * intensity)
	b.opaque[i*3+2] = float32(c.B * intensity)
	b.depth[i] = float32(depth)
	setVec3(b.normal, i, normal)
}

// saturated reports whether pixel i is visually opaque from transparent
// accumulation alone.
func (b *ScreenBuffer) saturated(i int) bool {
	return 1-b.revealage[i] >= 0.99
}
