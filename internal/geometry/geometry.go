// SPDX-License-Identifier: MIT

// Package geometry is a minimal 3D scene graph for browser rendering. Every
// object marshals to JSON with a "type" discriminator so a three.js client
// can rebuild the scene without further metadata.
package geometry

import "encoding/json"

// Point is a position in meters. 2D profile points leave Z at zero.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Line is a straight segment between two points, used as a sweep path.
type Line struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Color is an RGB color with 0-255 channels.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// White and Green mirror the editor's named colors.
func White() Color { return Color{255, 255, 255} }
func Green() Color { return Color{0, 255, 0} }

// Material carries the render attributes of an object. A nil Color leaves
// the client default in place.
type Material struct {
	Name      string  `json:"name,omitempty"`
	Color     *Color  `json:"color,omitempty"`
	Roughness float64 `json:"roughness,omitempty"`
	Opacity   float64 `json:"opacity"`
}

// Object is anything that can appear in a scene.
type Object interface {
	objectType() string
}

// Extrusion sweeps a closed polygon profile along a line.
type Extrusion struct {
	Profile  []Point  `json:"profile"`
	Path     Line     `json:"path"`
	Material Material `json:"material"`
}

func (Extrusion) objectType() string { return "extrusion" }

// CircularExtrusion sweeps a circle of the given diameter along a line.
type CircularExtrusion struct {
	Diameter float64  `json:"diameter"`
	Path     Line     `json:"path"`
	Material Material `json:"material"`
}

func (CircularExtrusion) objectType() string { return "circular_extrusion" }

// RectangularExtrusion sweeps a width x height rectangle along a line.
type RectangularExtrusion struct {
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Path     Line     `json:"path"`
	Material Material `json:"material"`
}

func (RectangularExtrusion) objectType() string { return "rectangular_extrusion" }

// Sphere is a ball at a center point.
type Sphere struct {
	Center   Point    `json:"center"`
	Radius   float64  `json:"radius"`
	Material Material `json:"material"`
}

func (Sphere) objectType() string { return "sphere" }

// Group collects objects; groups may nest.
type Group struct {
	children []Object
}

// NewGroup returns a group holding the given objects.
func NewGroup(objects ...Object) *Group {
	g := &Group{}
	for _, o := range objects {
		g.Add(o)
	}
	return g
}

// Add appends an object to the group. Nil objects are ignored.
func (g *Group) Add(o Object) {
	if o == nil {
		return
	}
	g.children = append(g.children, o)
}

// Children returns the group members in insertion order.
func (g *Group) Children() []Object {
	return g.children
}

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.children) }

func (*Group) objectType() string { return "group" }

// MarshalJSON renders the group as {"type":"group","children":[...]} with
// each child wrapped in its own type tag.
func (g *Group) MarshalJSON() ([]byte, error) {
	children := make([]json.RawMessage, 0, len(g.children))
	for _, o := range g.children {
		raw, err := marshalObject(o)
		if err != nil {
			return nil, err
		}
		children = append(children, raw)
	}
	return json.Marshal(struct {
		Type     string            `json:"type"`
		Children []json.RawMessage `json:"children"`
	}{Type: "group", Children: children})
}

func marshalObject(o Object) (json.RawMessage, error) {
	if g, ok := o.(*Group); ok {
		return g.MarshalJSON()
	}
	body, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	if len(body) == 2 { // "{}"
		return json.RawMessage(`{"type":"` + o.objectType() + `"}`), nil
	}
	// splice the discriminator into the object body
	tagged := append([]byte(`{"type":"`+o.objectType()+`",`), body[1:]...)
	return tagged, nil
}
