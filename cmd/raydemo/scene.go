package main

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/raymarch"
)

// Scene is the TOML scene description read by raydemo.
type Scene struct {
	Camera  CameraConfig   `toml:"camera"`
	Render  RenderConfig   `toml:"render"`
	Objects []ObjectConfig `toml:"object"`
}

// CameraConfig mirrors raymarch.Camera. Zero values keep the defaults.
type CameraConfig struct {
	Position   []float64 `toml:"position"`
	Focal      []float64 `toml:"focal"`
	Up         []float64 `toml:"up"`
	Width      int       `toml:"width"`
	Height     int       `toml:"height"`
	MaxDepth   float64   `toml:"max_depth"`
	Background string    `toml:"background"`
}

// RenderConfig holds renderer options.
type RenderConfig struct {
	Workers  int  `toml:"workers"`
	MaxSteps int  `toml:"max_steps"`
	CPUOnly  bool `toml:"cpu_only"`
}

// ObjectConfig describes one object. Which fields apply depends on Type.
type ObjectConfig struct {
	Type string `toml:"type"`

	// Geometry
	Center    []float64 `toml:"center"`
	Radius    float64   `toml:"radius"`
	Height    float64   `toml:"height"`
	Lower     []float64 `toml:"lower"`
	Upper     []float64 `toml:"upper"`
	Thickness float64   `toml:"thickness"`
	Size      []float64 `toml:"size"`
	Round     float64   `toml:"round"`
	Angle     float64   `toml:"angle"` // degrees, cone half-angle
	Translate []float64 `toml:"translate"`
	RotateDeg float64   `toml:"rotate_deg"`
	RotateAx  []float64 `toml:"rotate_axis"`

	// Fields
	Field      string  `toml:"field"`
	Resolution int     `toml:"resolution"`
	Extent     float64 `toml:"extent"`
	Threshold  float64 `toml:"threshold"`

	// Coloring
	Color    string   `toml:"color"`
	Opacity  *float64 `toml:"opacity"`
	Colormap string   `toml:"colormap"`
	VMin     *float64 `toml:"vmin"`
	VMax     *float64 `toml:"vmax"`
}

// defaultScene is rendered when no scene file is given.
const defaultScene = `
[camera]
position = [4.0, 3.0, 6.0]
width = 640
height = 480
background = "#1a1a2e"

[[object]]
type = "sphere"
radius = 0.8
center = [0.0, 0.0, 0.0]
color = "#e94560"

[[object]]
type = "box_frame"
lower = [-1.5, -1.5, -1.5]
upper = [1.5, 1.5, 1.5]
thickness = 0.05
color = "#f5f5f5"

[[object]]
type = "contour"
field = "gyroid"
resolution = 48
extent = 1.4
threshold = 0.0
colormap = "cool"
opacity = 0.4

[[object]]
type = "volume"
field = "sphere"
resolution = 32
extent = 3.0
colormap = "hot"
opacity = 0.05

[[object]]
type = "axes"
height = 0.3
center = [-2.0, -2.0, -2.0]
`

// LoadScene reads a scene from path, or the built-in scene when path is
// empty.
func LoadScene(path string) (*Scene, error) {
	data := []byte(defaultScene)
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read scene: %w", err)
		}
	}
	return ParseScene(data)
}

// ParseScene decodes a TOML scene. Unknown keys are rejected.
func ParseScene(data []byte) (*Scene, error) {
	var s Scene
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(&s); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, fmt.Errorf("scene:%d:%d: %w", row, col, err)
		}
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return nil, fmt.Errorf("scene: %s", sme.String())
		}
		return nil, fmt.Errorf("scene: %w", err)
	}
	return &s, nil
}

// Camera builds the raymarch camera.
func (c CameraConfig) Camera() (*raymarch.Camera, error) {
	cam := raymarch.NewCamera()
	var err error
	if cam.Position, err = vec(c.Position, cam.Position); err != nil {
		return nil, fmt.Errorf("camera position: %w", err)
	}
	if cam.Focal, err = vec(c.Focal, cam.Focal); err != nil {
		return nil, fmt.Errorf("camera focal: %w", err)
	}
	if cam.Up, err = vec(c.Up, cam.Up); err != nil {
		return nil, fmt.Errorf("camera up: %w", err)
	}
	if c.Width > 0 {
		cam.Width = c.Width
	}
	if c.Height > 0 {
		cam.Height = c.Height
	}
	if c.MaxDepth > 0 {
		cam.MaxDepth = c.MaxDepth
	}
	if c.Background != "" {
		cam.Background = raymarch.Hex(c.Background)
	}
	return cam, nil
}

// Options returns the renderer options.
func (r RenderConfig) Options() []raymarch.RendererOption {
	opts := []raymarch.RendererOption{
		raymarch.WithWorkers(r.Workers),
		raymarch.WithMaxSteps(r.MaxSteps),
	}
	if r.CPUOnly {
		opts = append(opts, raymarch.WithoutAccelerator())
	}
	return opts
}

// drawFunc renders one object into a buffer.
type drawFunc func(r *raymarch.Renderer, buf *raymarch.ScreenBuffer, cam *raymarch.Camera) error

// Build turns the object list into draw calls, in file order.
func (s *Scene) Build() ([]drawFunc, error) {
	draws := make([]drawFunc, 0, len(s.Objects))
	for i, o := range s.Objects {
		d, err := o.build()
		if err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, o.Type, err)
		}
		draws = append(draws, d)
	}
	return draws, nil
}

func (o ObjectConfig) build() (drawFunc, error) {
	switch o.Type {
	case "volume", "contour":
		return o.buildField()
	case "axes":
		center, err := vec(o.Center, raymarch.Vec3{})
		if err != nil {
			return nil, err
		}
		size := positive(o.Height, 0.5)
		return func(r *raymarch.Renderer, buf *raymarch.ScreenBuffer, cam *raymarch.Camera) error {
			return r.Axes(buf, cam, size, center)
		}, nil
	}

	g, err := o.geometry()
	if err != nil {
		return nil, err
	}
	coloring, err := o.coloring(raymarch.White)
	if err != nil {
		return nil, err
	}
	return func(r *raymarch.Renderer, buf *raymarch.ScreenBuffer, cam *raymarch.Camera) error {
		return r.Geometry(buf, cam, g, coloring)
	}, nil
}

func (o ObjectConfig) geometry() (*raymarch.Geometry, error) {
	center, err := vec(o.Center, raymarch.Vec3{})
	if err != nil {
		return nil, err
	}

	var g *raymarch.Geometry
	switch o.Type {
	case "sphere":
		g = raymarch.Sphere(positive(o.Radius, 1), center)
	case "cylinder":
		g = raymarch.Cylinder(positive(o.Radius, 0.5), positive(o.Height, 1), center)
	case "cone":
		s, c := math.Sincos(positive(o.Angle, 30) * math.Pi / 180)
		g = raymarch.Cone(s, c, positive(o.Height, 1), center)
	case "arrow":
		g = raymarch.Arrow(positive(o.Height, 1), center)
	case "box_frame":
		lower, err := vec(o.Lower, raymarch.V3(-1, -1, -1))
		if err != nil {
			return nil, err
		}
		upper, err := vec(o.Upper, raymarch.V3(1, 1, 1))
		if err != nil {
			return nil, err
		}
		g = raymarch.BoxFrame(lower, upper, positive(o.Thickness, 0.05))
	case "rounded_box":
		size, err := vec(o.Size, raymarch.V3(1, 1, 1))
		if err != nil {
			return nil, err
		}
		s, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}, o.Round)
		if err != nil {
			return nil, fmt.Errorf("sdfx box: %w", err)
		}
		s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: center.X, Y: center.Y, Z: center.Z}))
		g = raymarch.FromSDF3(s, size.MinComponent()/100)
	default:
		return nil, fmt.Errorf("unknown object type %q", o.Type)
	}

	if o.RotateDeg != 0 {
		axis, err := vec(o.RotateAx, raymarch.V3(0, 1, 0))
		if err != nil {
			return nil, err
		}
		angle := o.RotateDeg * math.Pi / 180
		g = g.Rotate(angle, axis).WithBounds(g.RotatedBounds(angle, axis))
	}
	if o.Translate != nil {
		t, err := vec(o.Translate, raymarch.Vec3{})
		if err != nil {
			return nil, err
		}
		g = g.Translate(t)
	}
	return g, nil
}

func (o ObjectConfig) buildField() (drawFunc, error) {
	field, err := o.grid()
	if err != nil {
		return nil, err
	}
	var coloring *raymarch.Coloring
	if o.Color != "" || o.Colormap != "" {
		if coloring, err = o.coloring(raymarch.White); err != nil {
			return nil, err
		}
	}
	if o.Type == "volume" {
		return func(r *raymarch.Renderer, buf *raymarch.ScreenBuffer, cam *raymarch.Camera) error {
			return r.Volume(buf, cam, field, coloring)
		}, nil
	}

	// Contours are colored by distance from the field center.
	var colorField *raymarch.Grid
	if o.Colormap != "" {
		if colorField, err = o.gridOf(func(p raymarch.Vec3) float64 { return p.Length() }); err != nil {
			return nil, err
		}
	}
	threshold := o.Threshold
	return func(r *raymarch.Renderer, buf *raymarch.ScreenBuffer, cam *raymarch.Camera) error {
		return r.Contour(buf, cam, field, threshold, colorField, coloring)
	}, nil
}

// fields are the analytic scalar fields a scene can sample.
var fields = map[string]func(p raymarch.Vec3) float64{
	"sphere": func(p raymarch.Vec3) float64 { return p.Length() },
	"gyroid": func(p raymarch.Vec3) float64 {
		const k = 2 * math.Pi / 1.4
		x, y, z := p.X*k, p.Y*k, p.Z*k
		return math.Sin(x)*math.Cos(y) + math.Sin(y)*math.Cos(z) + math.Sin(z)*math.Cos(x)
	},
	"waves": func(p raymarch.Vec3) float64 {
		return math.Sin(3*p.X) * math.Sin(3*p.Y) * math.Sin(3*p.Z)
	},
}

func (o ObjectConfig) grid() (*raymarch.Grid, error) {
	name := o.Field
	if name == "" {
		name = "sphere"
	}
	f, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", name)
	}
	return o.gridOf(f)
}

// gridOf samples f on a cube of side 2*extent centered at the origin.
func (o ObjectConfig) gridOf(f func(p raymarch.Vec3) float64) (*raymarch.Grid, error) {
	n := o.Resolution
	if n <= 1 {
		n = 32
	}
	extent := positive(o.Extent, 1)
	h := 2 * extent / float64(n)
	return raymarch.NewGridFunc([3]int{n, n, n}, raymarch.V3(h, h, h),
		raymarch.V3(-extent, -extent, -extent), f)
}

func (o ObjectConfig) coloring(fallback raymarch.RGBA) (*raymarch.Coloring, error) {
	var opts []raymarch.ColoringOption
	if o.Opacity != nil {
		opts = append(opts, raymarch.WithOpacity(*o.Opacity))
	}
	if o.Colormap != "" {
		vmin, vmax := 0.0, 1.0
		if o.VMin != nil {
			vmin = *o.VMin
		}
		if o.VMax != nil {
			vmax = *o.VMax
		}
		return raymarch.NewColormap(o.Colormap, vmin, vmax, opts...)
	}
	c := fallback
	if o.Color != "" {
		c = raymarch.Hex(o.Color)
	}
	opacity := 1.0
	if o.Opacity != nil {
		opacity = *o.Opacity
	}
	return raymarch.NewSolidColor(c, opacity)
}

func vec(v []float64, def raymarch.Vec3) (raymarch.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return raymarch.V3(v[0], v[1], v[2]), nil
	default:
		return raymarch.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(v))
	}
}

func positive(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
