package raymarch

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"strconv"

	"github.com/gogpu/raymarch/internal/cache"
)

// GradientStep is the central-difference step used for surface normals.
const GradientStep = 1e-3

// opcode is one instruction of a compiled distance program.
type opcode uint8

const (
	// Leaves push the distance of a primitive at the current position.
	opSphere opcode = iota
	opBoxFrame
	opCone
	opCylinder
	opExternal

	// Binary combinators pop two distances and push one.
	opUnion
	opDifference
	opIntersection

	// Transforms save the current position and replace it; opRestore
	// brings the saved position back once the operand is evaluated.
	opTranslate
	opRotate
	opRestore
)

type instr struct {
	op   opcode
	node *Geometry
}

// program is a geometry tree flattened into postfix order.
//
// A program is immutable once compiled and shared by every evaluator.
// valueDepth and posDepth are the exact stack sizes evaluation needs.
type program struct {
	code       []instr
	valueDepth int
	posDepth   int
}

// programs memoizes compiled trees by structural key.
var programs = cache.NewSharded[structKey, *program](64, func(k structKey) uint64 { return k.lo })

// program returns the compiled form of g, compiling it on first use.
func (g *Geometry) program() *program {
	return programs.GetOrCreate(g.key, func() *program {
		return compile(g)
	})
}

// ProgramCacheStats reports hit/miss counters of the compiled-program cache.
func ProgramCacheStats() cache.Stats {
	return programs.Stats()
}

// compile flattens g into a program. Operands are emitted before their
// combinator; transforms bracket their operand with save/restore.
func compile(g *Geometry) *program {
	c := compiler{}
	c.emit(g)
	return &program{code: c.code, valueDepth: c.maxValues, posDepth: c.maxPositions}
}

type compiler struct {
	code                    []instr
	values, maxValues       int
	positions, maxPositions int
}

func (c *compiler) emit(g *Geometry) {
	switch g.kind {
	case KindSphere:
		c.leaf(opSphere, g)
	case KindBoxFrame:
		c.leaf(opBoxFrame, g)
	case KindCone:
		c.leaf(opCone, g)
	case KindCylinder:
		c.leaf(opCylinder, g)
	case KindExternal:
		c.leaf(opExternal, g)
	case KindUnion, KindDifference, KindIntersection:
		c.emit(g.a)
		c.emit(g.b)
		op := opUnion
		if g.kind == KindDifference {
			op = opDifference
		} else if g.kind == KindIntersection {
			op = opIntersection
		}
		c.code = append(c.code, instr{op: op, node: g})
		c.values--
	case KindTranslate, KindRotate:
		op := opTranslate
		if g.kind == KindRotate {
			op = opRotate
		}
		c.code = append(c.code, instr{op: op, node: g})
		c.positions++
		c.maxPositions = max(c.maxPositions, c.positions)
		c.emit(g.a)
		c.code = append(c.code, instr{op: opRestore})
		c.positions--
	}
}

func (c *compiler) leaf(op opcode, g *Geometry) {
	c.code = append(c.code, instr{op: op, node: g})
	c.values++
	c.maxValues = max(c.maxValues, c.values)
}

// evaluator runs a program. It owns its stacks, so each goroutine needs its
// own evaluator; evaluation itself never allocates.
type evaluator struct {
	prog   *program
	values []float64
	saved  []Vec3
}

func newEvaluator(p *program) *evaluator {
	return &evaluator{
		prog:   p,
		values: make([]float64, 0, p.valueDepth),
		saved:  make([]Vec3, 0, p.posDepth),
	}
}

// distance evaluates the signed distance at p.
func (e *evaluator) distance(p Vec3) float64 {
	values := e.values[:0]
	saved := e.saved[:0]
	pos := p

	for _, in := range e.prog.code {
		n := in.node
		switch in.op {
		case opSphere:
			values = append(values, sdfSphere(pos, n.center, n.radius))
		case opBoxFrame:
			values = append(values, sdfBoxFrame(pos, n.lower, n.upper, n.thickness))
		case opCone:
			values = append(values, sdfCone(pos, n.center, n.sin, n.cos, n.height))
		case opCylinder:
			values = append(values, sdfCylinder(pos, n.center, n.radius, n.height))
		case opExternal:
			values = append(values, n.external.eval(pos))
		case opUnion, opDifference, opIntersection:
			top := len(values) - 1
			a, b := values[top-1], values[top]
			values = values[:top]
			switch in.op {
			case opUnion:
				values[top-1] = math.Min(a, b)
			case opDifference:
				values[top-1] = math.Max(a, -b)
			default:
				values[top-1] = math.Max(a, b)
			}
		case opTranslate:
			saved = append(saved, pos)
			pos = pos.Sub(n.offset)
		case opRotate:
			saved = append(saved, pos)
			pos = n.rot.InverseRotate(pos)
		case opRestore:
			pos = saved[len(saved)-1]
			saved = saved[:len(saved)-1]
		}
	}
	return values[0]
}

// gradient returns the central-difference gradient of the distance at p.
func (e *evaluator) gradient(p Vec3) Vec3 {
	const h = GradientStep
	return Vec3{
		X: e.distance(V3(p.X+h, p.Y, p.Z)) - e.distance(V3(p.X-h, p.Y, p.Z)),
		Y: e.distance(V3(p.X, p.Y+h, p.Z)) - e.distance(V3(p.X, p.Y-h, p.Z)),
		Z: e.distance(V3(p.X, p.Y, p.Z+h)) - e.distance(V3(p.X, p.Y, p.Z-h)),
	}.Div(2 * h)
}

// structKey identifies a tree by structure. It is the 128-bit FNV-1a hash
// of the node's kind, its parameters and its operands' keys, so building a
// node costs a fixed amount however deep its operands are.
type structKey struct {
	hi, lo uint64
}

func structuralKey(g *Geometry) structKey {
	h := fnv.New128a()
	var buf [8]byte
	word := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:]) // hash.Hash.Write never returns an error
	}
	floats := func(fs ...float64) {
		for _, f := range fs {
			word(math.Float64bits(f))
		}
	}
	operand := func(o *Geometry) {
		word(o.key.hi)
		word(o.key.lo)
	}

	word(uint64(g.kind))
	switch g.kind {
	case KindSphere:
		floats(g.center.X, g.center.Y, g.center.Z, g.radius)
	case KindBoxFrame:
		floats(g.lower.X, g.lower.Y, g.lower.Z, g.upper.X, g.upper.Y, g.upper.Z, g.thickness)
	case KindCone:
		floats(g.center.X, g.center.Y, g.center.Z, g.sin, g.cos, g.height)
	case KindCylinder:
		floats(g.center.X, g.center.Y, g.center.Z, g.radius, g.height)
	case KindExternal:
		word(g.external.id)
	case KindUnion, KindDifference, KindIntersection:
		operand(g.a)
		operand(g.b)
	case KindTranslate:
		floats(g.offset.X, g.offset.Y, g.offset.Z)
		operand(g.a)
	case KindRotate:
		floats(g.axis.X, g.axis.Y, g.axis.Z, g.angle)
		operand(g.a)
	}

	var sum [16]byte
	h.Sum(sum[:0])
	return structKey{
		hi: binary.BigEndian.Uint64(sum[:8]),
		lo: binary.BigEndian.Uint64(sum[8:]),
	}
}

// appendDescriptor appends the structural name of the tree rooted at g
// to b.
func appendDescriptor(b []byte, g *Geometry) []byte {
	b = append(b, g.kind.String()...)
	b = append(b, '(')
	switch g.kind {
	case KindSphere:
		b = appendVec(b, g.center)
		b = appendFloats(b, g.radius)
	case KindBoxFrame:
		b = appendVec(b, g.lower)
		b = appendVec(b, g.upper)
		b = appendFloats(b, g.thickness)
	case KindCone:
		b = appendVec(b, g.center)
		b = appendFloats(b, g.sin, g.cos, g.height)
	case KindCylinder:
		b = appendVec(b, g.center)
		b = appendFloats(b, g.radius, g.height)
	case KindExternal:
		b = append(b, g.external.name...)
		b = append(b, '#')
		b = strconv.AppendUint(b, g.external.id, 10)
	case KindUnion, KindDifference, KindIntersection:
		b = appendDescriptor(b, g.a)
		b = append(b, ',')
		b = appendDescriptor(b, g.b)
	case KindTranslate:
		b = appendVec(b, g.offset)
		b = appendDescriptor(b, g.a)
	case KindRotate:
		b = appendVec(b, g.axis)
		b = appendFloats(b, g.angle)
		b = appendDescriptor(b, g.a)
	}
	return append(b, ')')
}

func appendVec(b []byte, v Vec3) []byte {
	return appendFloats(b, v.X, v.Y, v.Z)
}

func appendFloats(b []byte, fs ...float64) []byte {
	for _, f := range fs {
		b = strconv.AppendFloat(b, f, 'g', -1, 64)
		b = append(b, ';')
	}
	return b
}
