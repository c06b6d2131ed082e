// SPDX-License-Identifier: MIT

package params

// NumberField describes a single numeric input of the editor.
type NumberField struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step,omitempty"`
	Suffix  string  `json:"suffix,omitempty"`
	Integer bool    `json:"integer,omitempty"`
}

// Step groups fields into one page of the editor. View names the
// visualization endpoint a UI should render next to the step.
type Step struct {
	Name   string        `json:"name"`
	Title  string        `json:"title"`
	View   string        `json:"view"`
	Fields []NumberField `json:"fields"`
}

// Schema returns the two-step parametrization of the bridge editor.
func Schema() []Step {
	return []Step{
		{
			Name:  "bridge_layout",
			Title: "Defining bridge layout",
			View:  "layout",
			Fields: []NumberField{
				{Name: "width", Label: "Width", Default: 20, Min: 1, Max: 100, Suffix: "m"},
				{Name: "length", Label: "Length", Default: 100, Min: 10, Max: 1000, Suffix: "m"},
				{Name: "height", Label: "Height", Default: 10, Min: 2, Max: 100, Suffix: "m"},
				{Name: "deck_thickness", Label: "Deck thickness", Default: 2, Min: 0.1, Max: 5, Suffix: "m"},
				{Name: "support_amount", Label: "Number of supports", Default: 1, Min: 0, Max: 20, Integer: true},
				{Name: "support_piles_amount", Label: "Piles per support", Default: 4, Min: 2, Max: 20, Integer: true},
			},
		},
		{
			Name:  "bridge_foundations",
			Title: "Defining bridge foundations",
			View:  "foundations",
			Fields: []NumberField{
				{Name: "pile_length", Label: "Pile length", Default: 20, Min: 1, Max: 100, Suffix: "m"},
				{Name: "pile_angle", Label: "Pile angle", Default: 10, Min: 0, Max: 45, Suffix: "°"},
				{Name: "pile_thickness", Label: "Pile width", Default: 500, Min: 100, Max: 2000, Suffix: "mm"},
				{Name: "deck_load", Label: "Deck load", Default: 100, Min: 0, Max: 10000, Suffix: "kN/m2"},
				{Name: "soil_stiffness", Label: "Soil stiffness", Default: 400, Min: 0, Max: 100000, Suffix: "MN/m"},
			},
		},
	}
}
