// SPDX-License-Identifier: MIT

package scia

import (
	"encoding/xml"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parsedProject struct {
	XMLName    xml.Name `xml:"project"`
	Containers []struct {
		ID    string `xml:"id,attr"`
		T     string `xml:"t,attr"`
		Table struct {
			Name string `xml:"name,attr"`
			Objs []struct {
				NM    string `xml:"nm,attr"`
				Inner string `xml:",innerxml"`
			} `xml:"obj"`
		} `xml:"table"`
	} `xml:"container"`
}

func testModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel()
	mat := Material{Name: "concrete_slab"}
	csMat := Material{Name: "C30/37"}

	corners := []*Node{
		m.CreateNode("node_deck_0", 0, 0, 10),
		m.CreateNode("node_deck_1", 0, 20, 10),
		m.CreateNode("node_deck_2", 100, 20, 10),
		m.CreateNode("node_deck_3", 100, 0, 10),
	}
	deck, err := m.CreatePlane(corners, 2, "deck_plane", mat)
	require.NoError(t, err)

	cs := m.CreateCircularCrossSection("circular_cross_section_support", csMat, 1)
	_, err = m.CreateBeam(
		m.CreateNode("node_support_bottom_0_0", 50, 1, 0),
		m.CreateNode("node_support_top_0_0", 50, 1, 10),
		cs,
	)
	require.NoError(t, err)

	lg, err := m.CreateLoadGroup("LG1", LoadOptionVariable, RelationStandard, LoadTypeCatG)
	require.NoError(t, err)
	lc, err := m.CreateVariableLoadCase("LC1", "first load case", lg, VariableLoadStatic, SpecificationStandard, DurationShort)
	require.NoError(t, err)
	_, err = m.CreateLoadCombination("C1", CombinationEnvelopeServiceability, []CaseFactor{{Case: lc, Factor: 1}})
	require.NoError(t, err)
	_, err = m.CreateSurfaceLoad("SF:1", lc, deck, DirectionZ, LoadTypeForce, -100000, CSysGlobal, LocationLength)
	require.NoError(t, err)
	return m
}

func TestGenerateXMLInputIsWellFormed(t *testing.T) {
	m := testModel(t)
	input, def, err := m.GenerateXMLInput()
	require.NoError(t, err)

	var proj parsedProject
	require.NoError(t, xml.Unmarshal(input, &proj))
	assert.Equal(t, xmlns, proj.XMLName.Space)
	// one container per object table
	assert.Len(t, proj.Containers, 12)

	byTable := map[string]int{}
	for _, c := range proj.Containers {
		byTable[c.Table.Name] = len(c.Table.Objs)
	}
	assert.Equal(t, 6, byTable["Node"])
	assert.Equal(t, 1, byTable["Beam"])
	assert.Equal(t, 1, byTable["Slab"])
	assert.Equal(t, 1, byTable["LoadGroup"])
	assert.Equal(t, 1, byTable["LoadCase"])
	assert.Equal(t, 1, byTable["Combination"])
	assert.Equal(t, 1, byTable["SurfaceLoad"])

	// .def mirrors the containers
	assert.Contains(t, string(def), "def_project")
	assert.Contains(t, string(def), "EP_DSG_Elements.EP_StructNode.1")
	assert.Contains(t, string(def), `t="Coord X"`)
}

func TestGenerateXMLInputIsDeterministic(t *testing.T) {
	a1, d1, err := testModel(t).GenerateXMLInput()
	require.NoError(t, err)
	a2, d2, err := testModel(t).GenerateXMLInput()
	require.NoError(t, err)

	if diff := cmp.Diff(string(a1), string(a2)); diff != "" {
		t.Errorf("input xml differs between identical builds (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(string(d1), string(d2)); diff != "" {
		t.Errorf("def xml differs between identical builds (-first +second):\n%s", diff)
	}
}

func TestGenerateXMLInputEmptyModel(t *testing.T) {
	// The table-definition download is produced from an empty model: the
	// .def must still describe every table.
	input, def, err := NewModel().GenerateXMLInput()
	require.NoError(t, err)

	var proj parsedProject
	require.NoError(t, xml.Unmarshal(input, &proj))
	assert.Len(t, proj.Containers, 12)
	for _, c := range proj.Containers {
		assert.Empty(t, c.Table.Objs)
	}
	assert.Contains(t, string(def), "def_container")
}

func TestGenerateXMLInputEscapesValues(t *testing.T) {
	m := NewModel()
	mat := Material{Name: `steel <& "special">`}
	corners := []*Node{
		m.CreateNode("a", 0, 0, 0),
		m.CreateNode("b", 1, 0, 0),
		m.CreateNode("c", 1, 1, 0),
	}
	_, err := m.CreatePlane(corners, 0.2, "plane<1>", mat)
	require.NoError(t, err)

	input, _, err := m.GenerateXMLInput()
	require.NoError(t, err)

	var proj parsedProject
	require.NoError(t, xml.Unmarshal(input, &proj))
}
