package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stackyard/stackyard/internal/vmath"
)

// Point is a YAML-friendly [x, y, z] triple.
type Point [3]float64

func (p Point) Vec() vmath.Vec3 { return vmath.Vec3{X: p[0], Y: p[1], Z: p[2]} }

// Box is an axis-aligned trigger volume in world space.
type Box struct {
	Center Point `yaml:"center"`
	Size   Point `yaml:"size"`
}

// Placement is a position plus yaw in degrees.
type Placement struct {
	Position Point   `yaml:"position"`
	Yaw      float64 `yaml:"yaw"`
}

type CarrierDef struct {
	Name     string  `yaml:"name"`
	Position Point   `yaml:"position"`
	Yaw      float64 `yaml:"yaw"`
	Radius   float64 `yaml:"radius"`
	// Anchor is the carrier-local position of the first stack base.
	Anchor Point `yaml:"anchor"`
}

type VehicleDef struct {
	Name     string  `yaml:"name"`
	Position Point   `yaml:"position"`
	Yaw      float64 `yaml:"yaw"`
	Radius   float64 `yaml:"radius"`
}

type GeneratorDef struct {
	Name     string      `yaml:"name"`
	Category Category    `yaml:"category"`
	Zone     Box         `yaml:"zone"`
	Points   []Placement `yaml:"points"`
}

type RecyclerDef struct {
	Name     string   `yaml:"name"`
	Category Category `yaml:"category"`
	Position Point    `yaml:"position"`
	Zone     Box      `yaml:"zone"`
}

// Scene describes the static layout: actors, generators and recyclers.
type Scene struct {
	CameraYaw  float64        `yaml:"camera_yaw"`
	Carrier    CarrierDef     `yaml:"carrier"`
	Vehicle    *VehicleDef    `yaml:"vehicle"`
	Generators []GeneratorDef `yaml:"generators"`
	Recyclers  []RecyclerDef  `yaml:"recyclers"`
}

// Validate checks references that YAML decoding cannot.
func (s *Scene) Validate() error {
	for _, g := range s.Generators {
		if !g.Category.Valid() {
			return fmt.Errorf("generator %q: category %s is not spawnable", g.Name, g.Category)
		}
		if len(g.Points) == 0 {
			return fmt.Errorf("generator %q: no generation points", g.Name)
		}
	}
	for _, r := range s.Recyclers {
		if !r.Category.Valid() {
			return fmt.Errorf("recycler %q: category %s is not recyclable", r.Name, r.Category)
		}
	}
	return nil
}

// ParseScene decodes and validates scene YAML.
func ParseScene(raw []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("scene: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return &s, nil
}

// LoadScene loads the scene layout from a YAML file.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	s, err := ParseScene(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
