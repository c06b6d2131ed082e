// SPDX-License-Identifier: MIT

package scia

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNodeDeduplicatesByName(t *testing.T) {
	m := NewModel()
	a := m.CreateNode("n1", 0, 0, 0)
	b := m.CreateNode("n1", 5, 5, 5)

	assert.Same(t, a, b)
	assert.Len(t, m.Nodes, 1)
	// the original coordinates win
	assert.Equal(t, 0.0, b.X)
}

func TestCreateBeamRequiresNodesAndSection(t *testing.T) {
	m := NewModel()
	cs := m.CreateCircularCrossSection("cs", Material{Name: "C30/37"}, 1)
	n1 := m.CreateNode("n1", 0, 0, 0)
	n2 := m.CreateNode("n2", 0, 0, 10)

	_, err := m.CreateBeam(nil, n2, cs)
	require.ErrorIs(t, err, ErrInvalidModel)
	_, err = m.CreateBeam(n1, n2, nil)
	require.ErrorIs(t, err, ErrInvalidModel)

	b, err := m.CreateBeam(n1, n2, cs)
	require.NoError(t, err)
	assert.Equal(t, "B1", b.Name)
}

func TestCreatePlaneRejectsDegenerateCorners(t *testing.T) {
	m := NewModel()
	n1 := m.CreateNode("n1", 0, 0, 0)
	n2 := m.CreateNode("n2", 1, 0, 0)

	_, err := m.CreatePlane([]*Node{n1, n2}, 0.2, "p", Material{Name: "concrete_slab"})
	require.ErrorIs(t, err, ErrInvalidModel)
}

func TestCreateLineSupportValidatesEnums(t *testing.T) {
	m := NewModel()
	cs := m.CreateCircularCrossSection("cs", Material{Name: "C30/37"}, 1)
	n1 := m.CreateNode("n1", 0, 0, 0)
	n2 := m.CreateNode("n2", 0, 0, 10)
	beam, err := m.CreateBeam(n1, n2, cs)
	require.NoError(t, err)

	_, err = m.CreateLineSupportOnBeam(LineSupport{
		Beam: beam,
		X:    "bogus", Y: FreedomFree, Z: FreedomFree,
		RX: FreedomFree, RY: FreedomFree, RZ: FreedomFree,
		CSys: CSysGlobal,
	})
	require.ErrorIs(t, err, ErrInvalidModel)

	ls, err := m.CreateLineSupportOnBeam(LineSupport{
		Beam: beam,
		X:    FreedomFlexible, StiffnessX: 400e6,
		Y: FreedomFlexible, StiffnessY: 400e6,
		Z: FreedomFree, RX: FreedomFree, RY: FreedomFree, RZ: FreedomFree,
		CSys: CSysGlobal,
	})
	require.NoError(t, err)
	assert.Equal(t, "LS1", ls.Name)
}

func TestCreateLoadAdministration(t *testing.T) {
	m := NewModel()
	mat := Material{Name: "concrete_slab"}
	corners := []*Node{
		m.CreateNode("n1", 0, 0, 10),
		m.CreateNode("n2", 0, 20, 10),
		m.CreateNode("n3", 100, 20, 10),
		m.CreateNode("n4", 100, 0, 10),
	}
	deck, err := m.CreatePlane(corners, 2, "deck_plane", mat)
	require.NoError(t, err)

	lg, err := m.CreateLoadGroup("LG1", LoadOptionVariable, RelationStandard, LoadTypeCatG)
	require.NoError(t, err)
	lc, err := m.CreateVariableLoadCase("LC1", "first load case", lg, VariableLoadStatic, SpecificationStandard, DurationShort)
	require.NoError(t, err)
	_, err = m.CreateLoadCombination("C1", CombinationEnvelopeServiceability, []CaseFactor{{Case: lc, Factor: 1}})
	require.NoError(t, err)
	_, err = m.CreateSurfaceLoad("SF:1", lc, deck, DirectionZ, LoadTypeForce, -100e3, CSysGlobal, LocationLength)
	require.NoError(t, err)

	_, err = m.CreateLoadCombination("C2", CombinationEnvelopeServiceability, nil)
	require.ErrorIs(t, err, ErrInvalidModel)
	_, err = m.CreateSurfaceLoad("SF:2", nil, deck, DirectionZ, LoadTypeForce, -1, CSysGlobal, LocationLength)
	require.ErrorIs(t, err, ErrInvalidModel)

	sum := m.Summarize()
	assert.Equal(t, []string{"LG1"}, sum.LoadGroups)
	assert.Equal(t, []string{"LC1"}, sum.LoadCases)
	assert.Equal(t, []string{"C1"}, sum.Combinations)
	assert.Equal(t, []string{"SF:1"}, sum.SurfaceLoads)
	assert.Equal(t, 4, sum.Nodes)
	assert.Equal(t, 1, sum.Planes)
}

func TestTemplatePath(t *testing.T) {
	dir := t.TempDir()

	_, err := TemplatePath(dir)
	require.ErrorIs(t, err, ErrNoTemplate)

	esa := filepath.Join(dir, "model.esa")
	require.NoError(t, os.WriteFile(esa, []byte("binary"), 0o600))

	path, err := TemplatePath(dir)
	require.NoError(t, err)
	assert.Equal(t, esa, path)

	dst := filepath.Join(dir, "out", "copy.esa")
	require.NoError(t, CopyTemplate(dir, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("binary"), data)
}
