// SPDX-License-Identifier: MIT

// Package scia holds the structural model fed to the SCIA engine and the
// XML input codec. The model covers the object tables the analysis needs:
// nodes, beams, planes, cross-sections, supports, subsoils and loads.
package scia

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidModel is returned when an object references unknown or
	// invalid parts.
	ErrInvalidModel = errors.New("invalid scia model")

	// ErrNoTemplate is returned when the binary .esa project template is
	// not present in the data directory.
	ErrNoTemplate = errors.New("scia project template (.esa) not found")
)

// Material identifies a material by catalogue position and name.
type Material struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Node is a point of the structural model. Coordinates are meters.
type Node struct {
	Name    string  `json:"name"`
	X, Y, Z float64 `json:"-"`
}

// CrossSectionShape is the profile family of a cross-section.
type CrossSectionShape string

const (
	ShapeCircular    CrossSectionShape = "circular"
	ShapeRectangular CrossSectionShape = "rectangular"
)

// CrossSection is a beam profile. Diameter is set for circular shapes,
// Width/Height for rectangular ones. Dimensions are meters.
type CrossSection struct {
	Name     string            `json:"name"`
	Material Material          `json:"material"`
	Shape    CrossSectionShape `json:"shape"`
	Diameter float64           `json:"diameter,omitempty"`
	Width    float64           `json:"width,omitempty"`
	Height   float64           `json:"height,omitempty"`
}

// Beam is a 1D member between two nodes.
type Beam struct {
	Name         string
	Begin, End   *Node
	CrossSection *CrossSection
}

// Plane is a 2D slab element spanned by corner nodes.
type Plane struct {
	Name      string
	Corners   []*Node
	Thickness float64
	Material  Material
}

// Subsoil models soil interaction stiffness in N/m.
type Subsoil struct {
	Name      string
	Stiffness float64
}

// SurfaceSupport couples a plane to a subsoil.
type SurfaceSupport struct {
	Name    string
	Plane   *Plane
	Subsoil *Subsoil
}

// LineSupport constrains a beam along its length. Stiffness values apply to
// flexible freedoms only, in N/m (N·m/rad for rotations).
type LineSupport struct {
	Name                   string
	Beam                   *Beam
	X, Y, Z                Freedom
	RX, RY, RZ             Freedom
	StiffnessX, StiffnessY float64
	StiffnessZ             float64
	StiffnessRX            float64
	StiffnessRY            float64
	StiffnessRZ            float64
	CSys                   CSys
}

// PointSupport constrains a single node. Freedom and Stiffness are ordered
// x, y, z, rx, ry, rz.
type PointSupport struct {
	Name      string
	Node      *Node
	Type      SpringType
	Freedom   [6]Freedom
	Stiffness [6]float64
	CSys      CSys
}

// LoadGroup classifies load cases for combination rules.
type LoadGroup struct {
	Name     string
	Load     LoadOption
	Relation RelationOption
	Type     LoadTypeOption
}

// LoadCase is a variable load case assigned to a group.
type LoadCase struct {
	Name          string
	Description   string
	Group         *LoadGroup
	Action        VariableLoadType
	Specification Specification
	Duration      Duration
}

// CaseFactor pairs a load case with its combination coefficient.
type CaseFactor struct {
	Case   *LoadCase
	Factor float64
}

// LoadCombination combines load cases under an envelope rule.
type LoadCombination struct {
	Name  string
	Kind  CombinationKind
	Cases []CaseFactor
}

// SurfaceLoad applies a distributed load to a plane. Value is N/m2, negative
// along the chosen axis for downward forces.
type SurfaceLoad struct {
	Name      string
	Case      *LoadCase
	Plane     *Plane
	Direction LoadDirection
	Type      LoadType
	Value     float64
	CSys      CSys
	Location  LoadLocation
}

// Model is the complete structural model. Objects keep insertion order so
// the generated XML input is deterministic.
type Model struct {
	Nodes           []*Node
	Beams           []*Beam
	Planes          []*Plane
	CrossSections   []*CrossSection
	Subsoils        []*Subsoil
	SurfaceSupports []*SurfaceSupport
	LineSupports    []*LineSupport
	PointSupports   []*PointSupport
	LoadGroups      []*LoadGroup
	LoadCases       []*LoadCase
	Combinations    []*LoadCombination
	SurfaceLoads    []*SurfaceLoad

	nodesByName map[string]*Node
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{nodesByName: map[string]*Node{}}
}

// CreateNode adds a node, or returns the existing node when the name is
// already known. Rows of supports and piles share corner nodes this way.
func (m *Model) CreateNode(name string, x, y, z float64) *Node {
	if n, ok := m.nodesByName[name]; ok {
		return n
	}
	n := &Node{Name: name, X: x, Y: y, Z: z}
	m.nodesByName[name] = n
	m.Nodes = append(m.Nodes, n)
	return n
}

// CreateBeam adds a 1D member between begin and end. Beams are named B1..Bn
// in creation order.
func (m *Model) CreateBeam(begin, end *Node, cs *CrossSection) (*Beam, error) {
	if begin == nil || end == nil {
		return nil, fmt.Errorf("%w: beam requires begin and end nodes", ErrInvalidModel)
	}
	if cs == nil {
		return nil, fmt.Errorf("%w: beam requires a cross-section", ErrInvalidModel)
	}
	b := &Beam{
		Name:         fmt.Sprintf("B%d", len(m.Beams)+1),
		Begin:        begin,
		End:          end,
		CrossSection: cs,
	}
	m.Beams = append(m.Beams, b)
	return b, nil
}

// CreatePlane adds a slab spanned by at least three corner nodes.
func (m *Model) CreatePlane(corners []*Node, thickness float64, name string, material Material) (*Plane, error) {
	if len(corners) < 3 {
		return nil, fmt.Errorf("%w: plane %q requires at least 3 corner nodes, got %d", ErrInvalidModel, name, len(corners))
	}
	for _, n := range corners {
		if n == nil {
			return nil, fmt.Errorf("%w: plane %q has a nil corner node", ErrInvalidModel, name)
		}
	}
	p := &Plane{Name: name, Corners: corners, Thickness: thickness, Material: material}
	m.Planes = append(m.Planes, p)
	return p, nil
}

// CreateCircularCrossSection registers a circular beam profile.
func (m *Model) CreateCircularCrossSection(name string, material Material, diameter float64) *CrossSection {
	cs := &CrossSection{Name: name, Material: material, Shape: ShapeCircular, Diameter: diameter}
	m.CrossSections = append(m.CrossSections, cs)
	return cs
}

// CreateRectangularCrossSection registers a rectangular beam profile.
func (m *Model) CreateRectangularCrossSection(name string, material Material, width, height float64) *CrossSection {
	cs := &CrossSection{Name: name, Material: material, Shape: ShapeRectangular, Width: width, Height: height}
	m.CrossSections = append(m.CrossSections, cs)
	return cs
}

// CreateSubsoil registers a subsoil with the given stiffness in N/m.
func (m *Model) CreateSubsoil(name string, stiffness float64) *Subsoil {
	s := &Subsoil{Name: name, Stiffness: stiffness}
	m.Subsoils = append(m.Subsoils, s)
	return s
}

// CreateSurfaceSupport rests a plane on a subsoil.
func (m *Model) CreateSurfaceSupport(plane *Plane, subsoil *Subsoil) (*SurfaceSupport, error) {
	if plane == nil || subsoil == nil {
		return nil, fmt.Errorf("%w: surface support requires a plane and a subsoil", ErrInvalidModel)
	}
	s := &SurfaceSupport{
		Name:    fmt.Sprintf("SS%d", len(m.SurfaceSupports)+1),
		Plane:   plane,
		Subsoil: subsoil,
	}
	m.SurfaceSupports = append(m.SurfaceSupports, s)
	return s, nil
}

// CreateLineSupportOnBeam constrains a beam along its length.
func (m *Model) CreateLineSupportOnBeam(ls LineSupport) (*LineSupport, error) {
	if ls.Beam == nil {
		return nil, fmt.Errorf("%w: line support requires a beam", ErrInvalidModel)
	}
	for _, f := range []Freedom{ls.X, ls.Y, ls.Z, ls.RX, ls.RY, ls.RZ} {
		if !f.IsValid() {
			return nil, fmt.Errorf("%w: line support %q has invalid freedom %q", ErrInvalidModel, ls.Name, f)
		}
	}
	if !ls.CSys.IsValid() {
		return nil, fmt.Errorf("%w: line support %q has invalid coordinate system %q", ErrInvalidModel, ls.Name, ls.CSys)
	}
	if ls.Name == "" {
		ls.Name = fmt.Sprintf("LS%d", len(m.LineSupports)+1)
	}
	out := ls
	m.LineSupports = append(m.LineSupports, &out)
	return &out, nil
}

// CreatePointSupport constrains a single node.
func (m *Model) CreatePointSupport(ps PointSupport) (*PointSupport, error) {
	if ps.Node == nil {
		return nil, fmt.Errorf("%w: point support requires a node", ErrInvalidModel)
	}
	if !ps.Type.IsValid() {
		return nil, fmt.Errorf("%w: point support %q has invalid spring type %q", ErrInvalidModel, ps.Name, ps.Type)
	}
	for _, f := range ps.Freedom {
		if !f.IsValid() {
			return nil, fmt.Errorf("%w: point support %q has invalid freedom %q", ErrInvalidModel, ps.Name, f)
		}
	}
	if !ps.CSys.IsValid() {
		return nil, fmt.Errorf("%w: point support %q has invalid coordinate system %q", ErrInvalidModel, ps.Name, ps.CSys)
	}
	if ps.Name == "" {
		ps.Name = fmt.Sprintf("PS%d", len(m.PointSupports)+1)
	}
	out := ps
	m.PointSupports = append(m.PointSupports, &out)
	return &out, nil
}

// CreateLoadGroup registers a load group.
func (m *Model) CreateLoadGroup(name string, load LoadOption, relation RelationOption, loadType LoadTypeOption) (*LoadGroup, error) {
	if !load.IsValid() || !relation.IsValid() || !loadType.IsValid() {
		return nil, fmt.Errorf("%w: load group %q has invalid options", ErrInvalidModel, name)
	}
	g := &LoadGroup{Name: name, Load: load, Relation: relation, Type: loadType}
	m.LoadGroups = append(m.LoadGroups, g)
	return g, nil
}

// CreateVariableLoadCase registers a variable load case in a group.
func (m *Model) CreateVariableLoadCase(name, description string, group *LoadGroup, action VariableLoadType, spec Specification, duration Duration) (*LoadCase, error) {
	if group == nil {
		return nil, fmt.Errorf("%w: load case %q requires a load group", ErrInvalidModel, name)
	}
	if !action.IsValid() || !spec.IsValid() || !duration.IsValid() {
		return nil, fmt.Errorf("%w: load case %q has invalid options", ErrInvalidModel, name)
	}
	lc := &LoadCase{
		Name:          name,
		Description:   description,
		Group:         group,
		Action:        action,
		Specification: spec,
		Duration:      duration,
	}
	m.LoadCases = append(m.LoadCases, lc)
	return lc, nil
}

// CreateLoadCombination combines load cases with factors under kind.
func (m *Model) CreateLoadCombination(name string, kind CombinationKind, cases []CaseFactor) (*LoadCombination, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: combination %q has invalid kind %q", ErrInvalidModel, name, kind)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("%w: combination %q has no load cases", ErrInvalidModel, name)
	}
	for _, cf := range cases {
		if cf.Case == nil {
			return nil, fmt.Errorf("%w: combination %q references a nil load case", ErrInvalidModel, name)
		}
	}
	c := &LoadCombination{Name: name, Kind: kind, Cases: cases}
	m.Combinations = append(m.Combinations, c)
	return c, nil
}

// CreateSurfaceLoad applies a distributed load to a plane.
func (m *Model) CreateSurfaceLoad(name string, lc *LoadCase, plane *Plane, direction LoadDirection, loadType LoadType, value float64, csys CSys, location LoadLocation) (*SurfaceLoad, error) {
	if lc == nil || plane == nil {
		return nil, fmt.Errorf("%w: surface load %q requires a load case and a plane", ErrInvalidModel, name)
	}
	if !direction.IsValid() || !loadType.IsValid() || !csys.IsValid() || !location.IsValid() {
		return nil, fmt.Errorf("%w: surface load %q has invalid options", ErrInvalidModel, name)
	}
	sl := &SurfaceLoad{
		Name:      name,
		Case:      lc,
		Plane:     plane,
		Direction: direction,
		Type:      loadType,
		Value:     value,
		CSys:      csys,
		Location:  location,
	}
	m.SurfaceLoads = append(m.SurfaceLoads, sl)
	return sl, nil
}

// Summary is the inspectable shape of a model: object counts and the load
// administration.
type Summary struct {
	Nodes           int      `json:"nodes"`
	Beams           int      `json:"beams"`
	Planes          int      `json:"planes"`
	CrossSections   int      `json:"cross_sections"`
	Subsoils        int      `json:"subsoils"`
	SurfaceSupports int      `json:"surface_supports"`
	LineSupports    int      `json:"line_supports"`
	PointSupports   int      `json:"point_supports"`
	LoadGroups      []string `json:"load_groups"`
	LoadCases       []string `json:"load_cases"`
	Combinations    []string `json:"combinations"`
	SurfaceLoads    []string `json:"surface_loads"`
}

// Summarize returns counts and load case names for the model endpoints.
func (m *Model) Summarize() Summary {
	s := Summary{
		Nodes:           len(m.Nodes),
		Beams:           len(m.Beams),
		Planes:          len(m.Planes),
		CrossSections:   len(m.CrossSections),
		Subsoils:        len(m.Subsoils),
		SurfaceSupports: len(m.SurfaceSupports),
		LineSupports:    len(m.LineSupports),
		PointSupports:   len(m.PointSupports),
	}
	for _, g := range m.LoadGroups {
		s.LoadGroups = append(s.LoadGroups, g.Name)
	}
	for _, lc := range m.LoadCases {
		s.LoadCases = append(s.LoadCases, lc.Name)
	}
	for _, c := range m.Combinations {
		s.Combinations = append(s.Combinations, c.Name)
	}
	for _, sl := range m.SurfaceLoads {
		s.SurfaceLoads = append(s.SurfaceLoads, sl.Name)
	}
	return s
}
