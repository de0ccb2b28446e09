package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

const lightsExtension = "KHR_lights_punctual"

// maxNodeDepth bounds the node hierarchy walk so a cyclic document cannot
// recurse forever.
const maxNodeDepth = 64

var errNoExtras = errors.New("no extras")

// gltfLight is one entry of the document-level KHR_lights_punctual list.
type gltfLight struct {
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Color     *[3]float64 `json:"color,omitempty"`
	Intensity *float64    `json:"intensity,omitempty"`
}

// sceneExtras are read from the glTF scene's extras.
type sceneExtras struct {
	Background *Color     `json:"background,omitempty"`
	Ambient    *LightFile `json:"ambient,omitempty"`
}

// gltfImporter walks one document and collects a Description.
type gltfImporter struct {
	doc    *gltf.Document
	lights []gltfLight
	desc   *Description

	haveCamera bool
}

// LoadGLTF imports a glTF 2.0 document (.gltf or .glb) as a scene.
//
// glTF has no notion of analytic spheres, so primitives are authored as
// node extras holding the same object form as the JSON scene format, for
// example {"type": "sphere", "radius": 0.5, "material": {"kind": "glass"}}.
// The node transform places the object and scales sphere radii.
// KHR_lights_punctual point and directional lights are imported (spot lights
// become point lights), the first perspective camera becomes the view, and
// the scene's extras may carry "background" and an "ambient" light.
// Triangle meshes are skipped with a warning.
func LoadGLTF(path string) (*Description, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	desc, err := importDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if desc.Name == "" {
		desc.Name = filepath.Base(path)
	}
	return desc, nil
}

func importDocument(doc *gltf.Document) (*Description, error) {
	imp := &gltfImporter{doc: doc, desc: &Description{}}

	if raw, ok := doc.Extensions[lightsExtension]; ok {
		var ext struct {
			Lights []gltfLight `json:"lights"`
		}
		if err := remarshal(raw, &ext); err != nil {
			return nil, fmt.Errorf("%s: %w", lightsExtension, err)
		}
		imp.lights = ext.Lights
	}

	roots, err := imp.roots()
	if err != nil {
		return nil, err
	}
	for _, idx := range roots {
		if err := imp.visit(idx, math3d.Identity(), 0); err != nil {
			return nil, err
		}
	}

	if !imp.haveCamera {
		imp.desc.Camera = imp.desc.FrameCamera(render.DefaultCameraConfig().FOV)
	}
	return imp.desc, nil
}

// roots returns the root nodes of the default scene and applies its extras.
// Documents without scenes use every node that is nobody's child.
func (imp *gltfImporter) roots() ([]int, error) {
	doc := imp.doc
	if len(doc.Scenes) == 0 {
		child := make(map[int]bool)
		for _, n := range doc.Nodes {
			for _, c := range n.Children {
				child[c] = true
			}
		}
		var roots []int
		for i := range doc.Nodes {
			if !child[i] {
				roots = append(roots, i)
			}
		}
		return roots, nil
	}

	idx := 0
	if doc.Scene != nil {
		idx = *doc.Scene
	}
	if idx < 0 || idx >= len(doc.Scenes) {
		return nil, fmt.Errorf("default scene %d out of range", idx)
	}
	sc := doc.Scenes[idx]
	imp.desc.Name = sc.Name

	var extras sceneExtras
	switch err := remarshal(sc.Extras, &extras); {
	case errors.Is(err, errNoExtras):
	case err != nil:
		return nil, fmt.Errorf("scene extras: %w", err)
	default:
		if extras.Background != nil {
			imp.desc.Background = math3d.Vec3(*extras.Background)
		}
		if extras.Ambient != nil {
			amb := *extras.Ambient
			amb.Type = "ambient"
			light, err := amb.light()
			if err != nil {
				return nil, err
			}
			imp.desc.Lights = append(imp.desc.Lights, light)
		}
	}
	return sc.Nodes, nil
}

func (imp *gltfImporter) visit(idx int, parent math3d.Mat4, depth int) error {
	if idx < 0 || idx >= len(imp.doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}
	node := imp.doc.Nodes[idx]
	world := parent.Mul(localMatrix(node))
	name := node.Name
	if name == "" {
		name = fmt.Sprintf("#%d", idx)
	}

	var obj ObjectFile
	switch err := remarshal(node.Extras, &obj); {
	case errors.Is(err, errNoExtras):
		if node.Mesh != nil {
			imp.warnf("node %s: triangle meshes are not supported, skipped", name)
		}
	case err != nil:
		return fmt.Errorf("node %s extras: %w", name, err)
	case obj.Type != "":
		prim, err := placeObject(obj, world)
		if err != nil {
			return fmt.Errorf("node %s: %w", name, err)
		}
		imp.desc.Objects = append(imp.desc.Objects, prim)
	}

	if node.Camera != nil && !imp.haveCamera {
		if err := imp.camera(*node.Camera, world); err != nil {
			return fmt.Errorf("node %s: %w", name, err)
		}
	}

	if raw, ok := node.Extensions[lightsExtension]; ok {
		if err := imp.light(raw, world); err != nil {
			return fmt.Errorf("node %s: %w", name, err)
		}
	}

	for _, child := range node.Children {
		if err := imp.visit(child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// placeObject moves an object authored in node space into world space.
func placeObject(obj ObjectFile, world math3d.Mat4) (scene.Primitive, error) {
	switch obj.Type {
	case "sphere":
		if obj.Radius == 0 {
			obj.Radius = 1
		}
		center := world.MulVec3(obj.Center.V3())
		obj.Center = Vec{center.X, center.Y, center.Z}
		obj.Radius *= world.MaxScale()
	case "plane", "infinite_plane":
		normal := obj.Normal.V3()
		if normal.IsZero() {
			normal = math3d.Up()
		}
		point := world.MulVec3(obj.Point.V3())
		normal = world.MulVec3Dir(normal)
		obj.Point = Vec{point.X, point.Y, point.Z}
		obj.Normal = Vec{normal.X, normal.Y, normal.Z}
	}
	return obj.primitive()
}

func (imp *gltfImporter) camera(idx int, world math3d.Mat4) error {
	if idx < 0 || idx >= len(imp.doc.Cameras) {
		return fmt.Errorf("camera %d out of range", idx)
	}
	cam := imp.doc.Cameras[idx]
	if cam.Perspective == nil {
		imp.warnf("camera %d: only perspective cameras are supported, skipped", idx)
		return nil
	}

	eye := world.Translation()
	forward := world.MulVec3Dir(math3d.V3(0, 0, -1))
	if forward.IsZero() {
		return fmt.Errorf("camera %d: degenerate transform", idx)
	}
	cfg := render.CameraConfig{
		LookFrom: eye,
		LookAt:   eye.Add(forward.Normalize()),
		FOV:      float64(cam.Perspective.Yfov) * 180 / math.Pi,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("camera %d: %w", idx, err)
	}
	imp.desc.Camera = cfg
	imp.haveCamera = true
	return nil
}

func (imp *gltfImporter) light(raw any, world math3d.Mat4) error {
	var ref struct {
		Light *int `json:"light"`
	}
	if err := remarshal(raw, &ref); err != nil {
		return fmt.Errorf("%s: %w", lightsExtension, err)
	}
	if ref.Light == nil {
		return nil
	}
	if *ref.Light < 0 || *ref.Light >= len(imp.lights) {
		return fmt.Errorf("light %d out of range", *ref.Light)
	}
	src := imp.lights[*ref.Light]

	color := math3d.Splat3(1)
	if src.Color != nil {
		color = math3d.V3(src.Color[0], src.Color[1], src.Color[2])
	}
	intensity := 1.0
	if src.Intensity != nil {
		intensity = *src.Intensity
	}

	switch src.Type {
	case "point", "spot":
		if src.Type == "spot" {
			imp.warnf("light %q: spot cone ignored, imported as point light", src.Name)
		}
		pos := world.Translation()
		imp.desc.Lights = append(imp.desc.Lights, scene.NewPointLight(pos, color, intensity))
	case "directional":
		dir := world.MulVec3Dir(math3d.V3(0, 0, -1))
		if dir.IsZero() {
			return fmt.Errorf("light %q: %w", src.Name, scene.ErrZeroDirection)
		}
		imp.desc.Lights = append(imp.desc.Lights, scene.NewDirectionalLight(dir, color, intensity))
	default:
		return fmt.Errorf("light %q: unknown type %q", src.Name, src.Type)
	}
	return nil
}

func (imp *gltfImporter) warnf(format string, args ...any) {
	imp.desc.Warnings = append(imp.desc.Warnings, fmt.Sprintf(format, args...))
}

// localMatrix returns the node's matrix, or its TRS properties composed when
// the matrix is absent. Missing scale and rotation fall back to identity.
func localMatrix(n *gltf.Node) math3d.Mat4 {
	var m math3d.Mat4
	for i, v := range n.Matrix {
		m[i] = float64(v)
	}
	if m != (math3d.Mat4{}) && m != math3d.Identity() {
		return m
	}

	t := math3d.V3(float64(n.Translation[0]), float64(n.Translation[1]), float64(n.Translation[2]))
	r := math3d.V4(float64(n.Rotation[0]), float64(n.Rotation[1]), float64(n.Rotation[2]), float64(n.Rotation[3]))
	s := math3d.V3(float64(n.Scale[0]), float64(n.Scale[1]), float64(n.Scale[2]))
	if s.IsZero() {
		s = math3d.Splat3(1)
	}
	return math3d.TRS(t, r, s)
}

// remarshal decodes an extras or extension value into dst. The gltf package
// hands these over either as raw JSON or as generic maps.
func remarshal(v any, dst any) error {
	switch raw := v.(type) {
	case nil:
		return errNoExtras
	case json.RawMessage:
		if len(raw) == 0 || string(raw) == "null" {
			return errNoExtras
		}
		return json.Unmarshal(raw, dst)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if string(data) == "null" {
		return errNoExtras
	}
	return json.Unmarshal(data, dst)
}
