// SPDX-License-Identifier: MIT

// Package visualization builds the 3D scenes shown next to the editor
// steps: the bridge layout with lanes and embankments, and the foundations
// overlaying the structural model.
package visualization

import (
	"math"

	"github.com/viktor-platform/scia-bridge/internal/bridge"
	"github.com/viktor-platform/scia-bridge/internal/geometry"
	"github.com/viktor-platform/scia-bridge/internal/params"
	"github.com/viktor-platform/scia-bridge/internal/scia"
)

// BridgeLayout renders the layout scene: deck with wear layer and bike
// lanes, the road passing under the bridge with its lane markings, green
// embankments and the circular support columns.
func BridgeLayout(p params.BridgeParams, opacity float64) *geometry.Group {
	g := geometry.NewGroup()

	width := p.Layout.Width
	length := p.Layout.Length
	height := p.Layout.Height
	deckThickness := p.Layout.DeckThickness

	laneColor := geometry.Color{R: 42, G: 41, B: 34}
	bikeLaneColor := geometry.Color{R: 109, G: 52, B: 45}
	white := geometry.White()
	green := geometry.Green()

	bridgeMaterial := geometry.Material{Name: "bridge", Roughness: 1, Opacity: opacity}
	supportMaterial := geometry.Material{Name: "support_piles", Roughness: 1, Opacity: math.Max(opacity, 0.5)}
	laneMaterial := geometry.Material{Name: "lanes", Roughness: 1, Color: &laneColor, Opacity: opacity}
	bikeLaneMaterial := geometry.Material{Name: "lanes", Roughness: 1, Color: &bikeLaneColor, Opacity: opacity}
	markingMaterial := geometry.Material{Name: "lanes", Roughness: 1, Color: &white, Opacity: opacity}
	taludMaterial := geometry.Material{Name: "talud", Roughness: 1, Color: &green, Opacity: opacity}

	taludX := height * math.Tan(bridge.TaludAngle)
	taludLength := height / math.Cos(bridge.TaludAngle)

	deckProfile := rect(0, 0, length, width)
	bikeLaneProfile := rect(0, 0, length, width/4)
	laneProfile := rect(taludX, -length, length-taludX, length)
	markingProfile := rect(0, -length, 1, length)
	taludProfile := rect(0, -length, taludLength, length)

	// deck slab
	g.Add(geometry.Extrusion{
		Profile:  deckProfile,
		Path:     vertical(0, 0, height, height+deckThickness),
		Material: bridgeMaterial,
	})
	// asphalt wear layer on top
	g.Add(geometry.Extrusion{
		Profile:  deckProfile,
		Path:     vertical(0, 0, height+deckThickness, height+deckThickness+0.2),
		Material: laneMaterial,
	})
	// bike lanes on both edges of the deck
	g.Add(geometry.Extrusion{
		Profile:  bikeLaneProfile,
		Path:     vertical(0, 0, height+deckThickness, height+deckThickness+0.3),
		Material: bikeLaneMaterial,
	})
	g.Add(geometry.Extrusion{
		Profile:  bikeLaneProfile,
		Path:     vertical(0, width*0.75, height+deckThickness, height+deckThickness+0.3),
		Material: bikeLaneMaterial,
	})
	// road under the bridge
	g.Add(geometry.Extrusion{
		Profile:  laneProfile,
		Path:     vertical(0, 0, -1, 0),
		Material: laneMaterial,
	})
	// white lane markings at the support grid
	for _, x := range bridge.Linspace(taludX+2, length-taludX-2, p.Layout.SupportAmount+2) {
		g.Add(geometry.Extrusion{
			Profile:  markingProfile,
			Path:     geometry.Line{Start: geometry.Point{X: x}, End: geometry.Point{X: x, Z: 0.2}},
			Material: markingMaterial,
		})
	}
	// green embankment wedges at both ends
	g.Add(geometry.Extrusion{
		Profile: taludProfile,
		Path: geometry.Line{
			Start: geometry.Point{X: taludX, Z: math.Tan(bridge.TaludAngle) - deckThickness},
			End:   geometry.Point{X: taludX - 1, Z: -deckThickness},
		},
		Material: taludMaterial,
	})
	g.Add(geometry.Extrusion{
		Profile: taludProfile,
		Path: geometry.Line{
			Start: geometry.Point{X: length - taludX, Z: -math.Tan(bridge.TaludAngle)},
			End:   geometry.Point{X: length - taludX - 1},
		},
		Material: taludMaterial,
	})
	// circular support columns
	for _, x := range bridge.SupportRowPositions(p) {
		for _, y := range bridge.PileRowPositions(p) {
			g.Add(geometry.CircularExtrusion{
				Diameter: bridge.SupportBeamDiameter,
				Path: geometry.Line{
					Start: geometry.Point{X: x, Y: y},
					End:   geometry.Point{X: x, Y: y, Z: height},
				},
				Material: supportMaterial,
			})
		}
	}

	return g
}

// BridgeFoundations renders the foundations scene from the structural
// model: green node spheres, circular member tubes, the rectangular
// foundation piles, the deck and every foundation slab. The layout scene is
// typically overlaid at low opacity via Overlay.
func BridgeFoundations(p params.BridgeParams, model *scia.Model, opacity float64) *geometry.Group {
	g := geometry.NewGroup()

	width := p.Layout.Width
	length := p.Layout.Length
	height := p.Layout.Height
	deckThickness := p.Layout.DeckThickness
	pileThickness := p.Foundations.PileThickness * 1e-3

	green := geometry.Green()
	foundationMaterial := geometry.Material{Name: "foundation", Roughness: 1, Opacity: opacity}
	nodeMaterial := geometry.Material{Name: "node", Color: &green, Opacity: 1}
	deckMaterial := geometry.Material{Name: "deck", Roughness: 1, Opacity: opacity}

	slabThickness := deckThickness

	// every model node as a green sphere
	for _, n := range model.Nodes {
		g.Add(geometry.Sphere{
			Center:   geometry.Point{X: n.X, Y: n.Y, Z: n.Z},
			Radius:   0.5,
			Material: nodeMaterial,
		})
	}

	// every member as a thin tube
	const memberDiameter = 0.2
	for _, b := range model.Beams {
		g.Add(geometry.CircularExtrusion{
			Diameter: memberDiameter,
			Path: geometry.Line{
				Start: geometry.Point{X: b.Begin.X, Y: b.Begin.Y, Z: b.Begin.Z},
				End:   geometry.Point{X: b.End.X, Y: b.End.Y, Z: b.End.Z},
			},
			Material: deckMaterial,
		})
	}

	// foundation piles as rectangular volumes; the first rows*piles beams
	// are the circular support columns
	columns := (p.Layout.SupportAmount + 2) * p.Layout.SupportPilesAmount
	if columns < len(model.Beams) {
		for _, b := range model.Beams[columns:] {
			g.Add(geometry.RectangularExtrusion{
				Width:  pileThickness,
				Height: pileThickness,
				Path: geometry.Line{
					Start: geometry.Point{X: b.Begin.X, Y: b.Begin.Y, Z: b.Begin.Z},
					End:   geometry.Point{X: b.End.X, Y: b.End.Y, Z: b.End.Z},
				},
				Material: foundationMaterial,
			})
		}
	}

	// deck slab
	g.Add(geometry.Extrusion{
		Profile:  rect(0, 0, length, width),
		Path:     vertical(0, 0, height, height+deckThickness),
		Material: deckMaterial,
	})

	// foundation slabs under each support row
	slabProfile := rect(-bridge.SupportSlabWidth/2, 0, bridge.SupportSlabWidth/2, width)
	for _, x := range bridge.SupportRowPositions(p) {
		g.Add(geometry.Extrusion{
			Profile: slabProfile,
			Path: geometry.Line{
				Start: geometry.Point{X: x, Z: -slabThickness / 2},
				End:   geometry.Point{X: x, Z: slabThickness / 2},
			},
			Material: foundationMaterial,
		})
	}

	// abutment slabs at both ends
	g.Add(geometry.Extrusion{
		Profile:  slabProfile,
		Path:     vertical(0, 0, height-slabThickness, height),
		Material: foundationMaterial,
	})
	g.Add(geometry.Extrusion{
		Profile:  slabProfile,
		Path:     geometry.Line{Start: geometry.Point{X: length, Z: height - slabThickness}, End: geometry.Point{X: length, Z: height}},
		Material: foundationMaterial,
	})

	return g
}

// Overlay merges the children of src into dst, used to show the layout
// scene underneath the foundations at reduced opacity.
func Overlay(dst, src *geometry.Group) {
	for _, o := range src.Children() {
		dst.Add(o)
	}
}

func rect(x0, y0, x1, y1 float64) []geometry.Point {
	return []geometry.Point{
		{X: x0, Y: y0},
		{X: x0, Y: y1},
		{X: x1, Y: y1},
		{X: x1, Y: y0},
		{X: x0, Y: y0},
	}
}

func vertical(x, y, z0, z1 float64) geometry.Line {
	return geometry.Line{
		Start: geometry.Point{X: x, Y: y, Z: z0},
		End:   geometry.Point{X: x, Y: y, Z: z1},
	}
}
