package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

// ErrBadColor is returned for colour values that are neither an [r,g,b]
// triple, a #hex string nor a known colour name.
var ErrBadColor = errors.New("invalid color")

// Vec is a JSON [x,y,z] triple.
type Vec [3]float64

// V3 converts the triple to a math3d vector.
func (v Vec) V3() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// Color is a linear RGB colour. In JSON it is an [r,g,b] array in linear
// space, a "#rrggbb" sRGB hex string or a CSS colour name.
type Color math3d.Vec3

// UnmarshalJSON decodes any of the accepted colour forms.
func (c *Color) UnmarshalJSON(data []byte) error {
	var rgb [3]float64
	if err := json.Unmarshal(data, &rgb); err == nil {
		*c = Color(math3d.V3(rgb[0], rgb[1], rgb[2]))
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("%w: %s", ErrBadColor, data)
	}
	parsed, err := ParseColor(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor decodes a "#rrggbb" hex string or a CSS colour name into
// linear RGB.
func ParseColor(s string) (Color, error) {
	var col colorful.Color
	if strings.HasPrefix(s, "#") {
		hex, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("%w %q: %w", ErrBadColor, s, err)
		}
		col = hex
	} else {
		named, ok := colornames.Map[strings.ToLower(s)]
		if !ok {
			return Color{}, fmt.Errorf("%w: unknown name %q", ErrBadColor, s)
		}
		col, _ = colorful.MakeColor(named)
	}

	r, g, b := col.LinearRgb()
	return Color(math3d.V3(r, g, b)), nil
}

// File is the JSON scene format.
type File struct {
	Name       string       `json:"name"`
	Camera     *CameraFile  `json:"camera,omitempty"`
	Background *Color       `json:"background,omitempty"`
	Objects    []ObjectFile `json:"objects"`
	Lights     []LightFile  `json:"lights"`
}

// CameraFile places the camera.
type CameraFile struct {
	LookFrom Vec     `json:"look_from"`
	LookAt   Vec     `json:"look_at"`
	FOV      float64 `json:"fov"`
}

// ObjectFile is one primitive. Type is "sphere", "plane" (a giant sphere)
// or "infinite_plane" (analytic).
type ObjectFile struct {
	Type     string       `json:"type"`
	Center   Vec          `json:"center"`
	Radius   float64      `json:"radius"`
	Point    Vec          `json:"point"`
	Normal   Vec          `json:"normal"`
	Material MaterialFile `json:"material"`
}

// MaterialFile picks a material kind and optionally overrides its
// per-kind defaults.
type MaterialFile struct {
	Kind        string   `json:"kind"`
	Color       *Color   `json:"color,omitempty"`
	Ambient     *float64 `json:"ambient,omitempty"`
	Diffuse     *float64 `json:"diffuse,omitempty"`
	Specular    *float64 `json:"specular,omitempty"`
	Mix         *float64 `json:"mix,omitempty"`
	Fuzz        *float64 `json:"fuzz,omitempty"`
	IOR         *float64 `json:"ior,omitempty"`
	Shininess   *float64 `json:"shininess,omitempty"`
	Attenuation *Color   `json:"attenuation,omitempty"`
}

// LightFile is one light. Type is "point", "directional" or "ambient".
type LightFile struct {
	Type      string   `json:"type"`
	Position  Vec      `json:"position"`
	Direction Vec      `json:"direction"`
	Color     *Color   `json:"color,omitempty"`
	Intensity *float64 `json:"intensity,omitempty"`
}

// LoadJSON reads a JSON scene file.
func LoadJSON(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	desc, err := f.Description()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if desc.Name == "" {
		desc.Name = path
	}
	return desc, nil
}

// Description converts the decoded file into a scene description.
func (f *File) Description() (*Description, error) {
	desc := &Description{Name: f.Name}

	for i, o := range f.Objects {
		prim, err := o.primitive()
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		desc.Objects = append(desc.Objects, prim)
	}
	for i, l := range f.Lights {
		light, err := l.light()
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		desc.Lights = append(desc.Lights, light)
	}

	if f.Background != nil {
		desc.Background = math3d.Vec3(*f.Background)
	}
	if f.Camera != nil {
		desc.Camera = render.CameraConfig{
			LookFrom: f.Camera.LookFrom.V3(),
			LookAt:   f.Camera.LookAt.V3(),
			FOV:      f.Camera.FOV,
		}
		if desc.Camera.FOV == 0 {
			desc.Camera.FOV = render.DefaultCameraConfig().FOV
		}
		if err := desc.Camera.Validate(); err != nil {
			return nil, fmt.Errorf("camera: %w", err)
		}
	} else {
		desc.Camera = desc.FrameCamera(render.DefaultCameraConfig().FOV)
	}
	return desc, nil
}

func (o ObjectFile) primitive() (scene.Primitive, error) {
	mat, err := o.Material.material()
	if err != nil {
		return nil, err
	}
	switch o.Type {
	case "sphere":
		return scene.NewSphere(o.Center.V3(), o.Radius, mat), nil
	case "plane":
		if o.Normal.V3().IsZero() {
			return nil, fmt.Errorf("plane normal: %w", scene.ErrZeroDirection)
		}
		return scene.NewSpherePlane(o.Point.V3(), o.Normal.V3(), mat), nil
	case "infinite_plane":
		if o.Normal.V3().IsZero() {
			return nil, fmt.Errorf("plane normal: %w", scene.ErrZeroDirection)
		}
		return scene.NewPlane(o.Point.V3(), o.Normal.V3(), mat), nil
	default:
		return nil, fmt.Errorf("unknown object type %q", o.Type)
	}
}

func (m MaterialFile) material() (*scene.Material, error) {
	kind, err := scene.ParseKind(m.Kind)
	if err != nil {
		return nil, err
	}
	mat := newKind(kind, math3d.Splat3(1))
	if m.Color != nil {
		mat.Color = math3d.Vec3(*m.Color)
	}
	if m.Attenuation != nil {
		mat.Attenuation = math3d.Vec3(*m.Attenuation)
	}
	override(&mat.Ambient, m.Ambient)
	override(&mat.Diffuse, m.Diffuse)
	override(&mat.Specular, m.Specular)
	override(&mat.Mix, m.Mix)
	override(&mat.Fuzz, m.Fuzz)
	override(&mat.RefractiveIndex, m.IOR)
	override(&mat.Shininess, m.Shininess)
	return mat, nil
}

// newKind returns the default material of a kind.
func newKind(kind scene.Kind, color math3d.Vec3) *scene.Material {
	switch kind {
	case scene.KindDiffuse:
		return scene.NewDiffuse(color)
	case scene.KindMetal:
		return scene.NewMetal(color)
	case scene.KindFuzzy:
		return scene.NewFuzzy(color)
	case scene.KindGlass:
		return scene.NewGlass(color)
	case scene.KindLight:
		return scene.NewLight(color)
	default:
		return scene.NewWall(color)
	}
}

func override(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func (l LightFile) light() (scene.Light, error) {
	color := math3d.Splat3(1)
	if l.Color != nil {
		color = math3d.Vec3(*l.Color)
	}
	intensity := 1.0
	if l.Intensity != nil {
		intensity = *l.Intensity
	}

	switch l.Type {
	case "point":
		return scene.NewPointLight(l.Position.V3(), color, intensity), nil
	case "directional":
		if l.Direction.V3().IsZero() {
			return scene.Light{}, fmt.Errorf("directional light: %w", scene.ErrZeroDirection)
		}
		return scene.NewDirectionalLight(l.Direction.V3(), color, intensity), nil
	case "ambient":
		return scene.NewAmbientLight(color, intensity), nil
	default:
		return scene.Light{}, fmt.Errorf("unknown light type %q", l.Type)
	}
}
