// Package raymarch renders 3-D scalar fields and implicit surfaces into 2-D
// images by raymarching.
//
// # Overview
//
// A render target is a [ScreenBuffer]: six per-pixel planes holding opaque
// color, depth, normal, transparent accumulation, revealage and background.
// Render passes run one ray per pixel and write into a shared buffer, so
// several objects compose into one image with correct occlusion. The final
// image is derived on demand.
//
// # Quick Start
//
//	import "github.com/gogpu/raymarch"
//
//	cam := raymarch.NewCamera()
//	buf := raymarch.NewScreenBufferFromCamera(cam)
//
//	r := raymarch.NewRenderer()
//	defer r.Close()
//
//	sphere := raymarch.Sphere(1, raymarch.V3(0, 0, 0))
//	_ = r.Geometry(buf, cam, sphere, nil) // opaque white
//
//	_ = buf.SavePNG("sphere.png")
//
// # Passes
//
// The renderer provides three passes and a gizmo built on the first:
//   - Geometry: sphere tracing of a [Geometry] expression tree
//   - Contour: isosurface extraction from a [Grid]
//   - Volume: absorption integration through a [Grid]
//   - Axes: red, yellow and green arrows along +x, +y and +z
//
// Opaque hits are depth-gated. Transparent contributions use weighted
// blended order-independent transparency, so passes may run in any order.
// Passes over one buffer must not run concurrently.
//
// # Geometry
//
// Geometry trees are built from primitives ([Sphere], [BoxFrame], [Cone],
// [Cylinder], [Arrow], [FromSDF3]) and combinators (Union, Difference,
// Intersection, Translate, Rotate). Nodes are immutable. Trees are compiled
// into flat programs that are cached by a structural hash of the tree.
//
// # Acceleration
//
// Passes run on a pool of CPU workers. The grid passes can be offloaded to
// a compute device by registering an [Accelerator]; importing the gpu
// sub-package registers the wgpu accelerator:
//
//	import _ "github.com/gogpu/raymarch/gpu"
//
// Any pass the accelerator declines runs on the CPU.
//
// # Coordinate System
//
// World space is right-handed. Image rows returned by
// [ScreenBuffer.Image] start at the visual top; buffer planes store row 0
// at the bottom.
package raymarch

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
