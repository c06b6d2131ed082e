// SPDX-License-Identifier: MIT

package scia

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

// SCIA groups every object table into a container identified by a fixed
// id and a type string. The ids are stable so regenerating the input for
// the same model yields identical documents.
const (
	xmlns = "http://www.scia.cz"

	containerNodes           = "{39A7F468-A0D4-4DFF-8E5C-5843E1807D13}"
	containerCrossSections   = "{E6CAB439-0F13-4D37-9B05-EAD2F5C5E3E8}"
	containerBeams           = "{ECB5D684-7357-11D4-9F6C-00104BC3B443}"
	containerPlanes          = "{8708ED41-8E66-11D4-AD94-F6F5DE2BE344}"
	containerSubsoils        = "{F78E5FE9-7B44-4E9D-A273-FF2F1A52C12B}"
	containerSurfaceSupports = "{69A400FD-61B9-4D1B-8C5C-BC6E2D6C7B2E}"
	containerLineSupports    = "{1CBC3F11-D7DF-4F2B-9375-4C0E9E2B4A34}"
	containerPointSupports   = "{1CBC3F12-42B8-4FAC-9CD9-66B4B59F4B96}"
	containerLoadGroups      = "{F9D4AA72-49D5-4D21-A3B6-3D9F3CBB747A}"
	containerLoadCases       = "{8D5A0A49-4FC1-4BB3-A7F9-8FBF35C5C5A1}"
	containerCombinations    = "{3C47A5A9-B722-46A8-B572-4E58FAC5C09D}"
	containerSurfaceLoads    = "{A4DB29C6-A3A5-4A26-9069-2B8D4A9AEFA2}"
)

type table struct {
	containerID string
	typeName    string
	tableName   string
	headers     []string
	rows        []row
}

type row struct {
	name  string
	cells []string
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func nodeRef(n *Node) string { return n.Name }

func (m *Model) tables() []table {
	nodes := table{
		containerID: containerNodes,
		typeName:    "EP_DSG_Elements.EP_StructNode.1",
		tableName:   "Node",
		headers:     []string{"Name", "Coord X", "Coord Y", "Coord Z"},
	}
	for _, n := range m.Nodes {
		nodes.rows = append(nodes.rows, row{name: n.Name, cells: []string{
			n.Name, formatFloat(n.X), formatFloat(n.Y), formatFloat(n.Z),
		}})
	}

	sections := table{
		containerID: containerCrossSections,
		typeName:    "EP_Material.EP_CrossSection.1",
		tableName:   "CrossSection",
		headers:     []string{"Name", "Material", "Shape", "Diameter", "Width", "Height"},
	}
	for _, cs := range m.CrossSections {
		sections.rows = append(sections.rows, row{name: cs.Name, cells: []string{
			cs.Name, cs.Material.Name, string(cs.Shape),
			formatFloat(cs.Diameter), formatFloat(cs.Width), formatFloat(cs.Height),
		}})
	}

	beams := table{
		containerID: containerBeams,
		typeName:    "EP_DSG_Elements.EP_Beam.1",
		tableName:   "Beam",
		headers:     []string{"Name", "Begin node", "End node", "CrossSection"},
	}
	for _, b := range m.Beams {
		beams.rows = append(beams.rows, row{name: b.Name, cells: []string{
			b.Name, nodeRef(b.Begin), nodeRef(b.End), b.CrossSection.Name,
		}})
	}

	planes := table{
		containerID: containerPlanes,
		typeName:    "EP_DSG_Elements.EP_Plane.1",
		tableName:   "Slab",
		headers:     []string{"Name", "Material", "Thickness", "Table of geometry"},
	}
	for _, p := range m.Planes {
		var geom bytes.Buffer
		for i, n := range p.Corners {
			if i > 0 {
				geom.WriteByte(';')
			}
			geom.WriteString(n.Name)
		}
		planes.rows = append(planes.rows, row{name: p.Name, cells: []string{
			p.Name, p.Material.Name, formatFloat(p.Thickness), geom.String(),
		}})
	}

	subsoils := table{
		containerID: containerSubsoils,
		typeName:    "EP_Subsoil.EP_Subsoil.1",
		tableName:   "Subsoil",
		headers:     []string{"Name", "Stiffness C1z"},
	}
	for _, s := range m.Subsoils {
		subsoils.rows = append(subsoils.rows, row{name: s.Name, cells: []string{
			s.Name, formatFloat(s.Stiffness),
		}})
	}

	surfaceSupports := table{
		containerID: containerSurfaceSupports,
		typeName:    "EP_Model.EP_SurfaceSupportSurface.1",
		tableName:   "SurfaceSupport",
		headers:     []string{"Name", "2D member", "Subsoil"},
	}
	for _, s := range m.SurfaceSupports {
		surfaceSupports.rows = append(surfaceSupports.rows, row{name: s.Name, cells: []string{
			s.Name, s.Plane.Name, s.Subsoil.Name,
		}})
	}

	lineSupports := table{
		containerID: containerLineSupports,
		typeName:    "EP_Model.EP_LineSupportLine.1",
		tableName:   "LineSupport",
		headers: []string{
			"Name", "Beam", "X", "Y", "Z", "Rx", "Ry", "Rz",
			"Stiffness X", "Stiffness Y", "Stiffness Z",
			"Stiffness Rx", "Stiffness Ry", "Stiffness Rz", "System",
		},
	}
	for _, ls := range m.LineSupports {
		lineSupports.rows = append(lineSupports.rows, row{name: ls.Name, cells: []string{
			ls.Name, ls.Beam.Name,
			string(ls.X), string(ls.Y), string(ls.Z),
			string(ls.RX), string(ls.RY), string(ls.RZ),
			formatFloat(ls.StiffnessX), formatFloat(ls.StiffnessY), formatFloat(ls.StiffnessZ),
			formatFloat(ls.StiffnessRX), formatFloat(ls.StiffnessRY), formatFloat(ls.StiffnessRZ),
			string(ls.CSys),
		}})
	}

	pointSupports := table{
		containerID: containerPointSupports,
		typeName:    "EP_Model.EP_PointSupportPoint.1",
		tableName:   "PointSupport",
		headers: []string{
			"Name", "Node", "Type",
			"X", "Y", "Z", "Rx", "Ry", "Rz",
			"Stiffness X", "Stiffness Y", "Stiffness Z",
			"Stiffness Rx", "Stiffness Ry", "Stiffness Rz", "System",
		},
	}
	for _, ps := range m.PointSupports {
		cells := []string{ps.Name, ps.Node.Name, string(ps.Type)}
		for _, f := range ps.Freedom {
			cells = append(cells, string(f))
		}
		for _, s := range ps.Stiffness {
			cells = append(cells, formatFloat(s))
		}
		cells = append(cells, string(ps.CSys))
		pointSupports.rows = append(pointSupports.rows, row{name: ps.Name, cells: cells})
	}

	loadGroups := table{
		containerID: containerLoadGroups,
		typeName:    "EP_LoadGroup.EP_LoadGroup.1",
		tableName:   "LoadGroup",
		headers:     []string{"Name", "Load", "Relation", "Load type"},
	}
	for _, g := range m.LoadGroups {
		loadGroups.rows = append(loadGroups.rows, row{name: g.Name, cells: []string{
			g.Name, string(g.Load), string(g.Relation), string(g.Type),
		}})
	}

	loadCases := table{
		containerID: containerLoadCases,
		typeName:    "EP_LoadCase.EP_LoadCase.1",
		tableName:   "LoadCase",
		headers:     []string{"Name", "Description", "Load group", "Action type", "Specification", "Duration"},
	}
	for _, lc := range m.LoadCases {
		loadCases.rows = append(loadCases.rows, row{name: lc.Name, cells: []string{
			lc.Name, lc.Description, lc.Group.Name,
			string(lc.Action), string(lc.Specification), string(lc.Duration),
		}})
	}

	combinations := table{
		containerID: containerCombinations,
		typeName:    "EP_LoadCombi.EP_LoadCombi.1",
		tableName:   "Combination",
		headers:     []string{"Name", "Type", "Load cases"},
	}
	for _, c := range m.Combinations {
		var cases bytes.Buffer
		for i, cf := range c.Cases {
			if i > 0 {
				cases.WriteByte(';')
			}
			fmt.Fprintf(&cases, "%s*%s", cf.Case.Name, formatFloat(cf.Factor))
		}
		combinations.rows = append(combinations.rows, row{name: c.Name, cells: []string{
			c.Name, string(c.Kind), cases.String(),
		}})
	}

	surfaceLoads := table{
		containerID: containerSurfaceLoads,
		typeName:    "EP_Load.EP_SurfaceForceSurface.1",
		tableName:   "SurfaceLoad",
		headers:     []string{"Name", "Load case", "2D member", "Direction", "Type", "Value", "System", "Location"},
	}
	for _, sl := range m.SurfaceLoads {
		surfaceLoads.rows = append(surfaceLoads.rows, row{name: sl.Name, cells: []string{
			sl.Name, sl.Case.Name, sl.Plane.Name,
			string(sl.Direction), string(sl.Type), formatFloat(sl.Value),
			string(sl.CSys), string(sl.Location),
		}})
	}

	return []table{
		nodes, sections, beams, planes, subsoils, surfaceSupports,
		lineSupports, pointSupports, loadGroups, loadCases, combinations,
		surfaceLoads,
	}
}

// GenerateXMLInput renders the model as the two SCIA input documents: the
// object tables (viktor.xml) and the table definitions (viktor.xml.def).
// Both are deterministic for a given model.
func (m *Model) GenerateXMLInput() (input []byte, def []byte, err error) {
	tables := m.tables()

	input, err = encodeInput(tables)
	if err != nil {
		return nil, nil, fmt.Errorf("encode scia input: %w", err)
	}
	def, err = encodeDef(tables)
	if err != nil {
		return nil, nil, fmt.Errorf("encode scia table definitions: %w", err)
	}
	return input, def, nil
}

func encodeInput(tables []table) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	project := xml.StartElement{
		Name: xml.Name{Local: "project"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: xmlns},
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: "http://www.w3.org/2001/XMLSchema-instance"},
			{Name: xml.Name{Local: "xsi:noNamespaceSchemaLocation"}, Value: "viktor.xml.def"},
		},
	}
	if err := enc.EncodeToken(project); err != nil {
		return nil, err
	}
	defElem := xml.StartElement{
		Name: xml.Name{Local: "def"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "uri"}, Value: "viktor.xml.def"}},
	}
	if err := enc.EncodeToken(defElem); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(defElem.End()); err != nil {
		return nil, err
	}

	for _, t := range tables {
		container := xml.StartElement{
			Name: xml.Name{Local: "container"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "id"}, Value: t.containerID},
				{Name: xml.Name{Local: "t"}, Value: t.typeName},
			},
		}
		if err := enc.EncodeToken(container); err != nil {
			return nil, err
		}
		tbl := xml.StartElement{
			Name: xml.Name{Local: "table"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "id"}, Value: t.containerID},
				{Name: xml.Name{Local: "t"}, Value: t.typeName},
				{Name: xml.Name{Local: "name"}, Value: t.tableName},
			},
		}
		if err := enc.EncodeToken(tbl); err != nil {
			return nil, err
		}
		for i, r := range t.rows {
			obj := xml.StartElement{
				Name: xml.Name{Local: "obj"},
				Attr: []xml.Attr{
					{Name: xml.Name{Local: "id"}, Value: strconv.Itoa(i + 1)},
					{Name: xml.Name{Local: "nm"}, Value: r.name},
				},
			}
			if err := enc.EncodeToken(obj); err != nil {
				return nil, err
			}
			for j, v := range r.cells {
				cell := xml.StartElement{
					Name: xml.Name{Local: fmt.Sprintf("p%d", j)},
					Attr: []xml.Attr{{Name: xml.Name{Local: "v"}, Value: v}},
				}
				if err := enc.EncodeToken(cell); err != nil {
					return nil, err
				}
				if err := enc.EncodeToken(cell.End()); err != nil {
					return nil, err
				}
			}
			if err := enc.EncodeToken(obj.End()); err != nil {
				return nil, err
			}
		}
		if err := enc.EncodeToken(tbl.End()); err != nil {
			return nil, err
		}
		if err := enc.EncodeToken(container.End()); err != nil {
			return nil, err
		}
	}

	if err := enc.EncodeToken(project.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeDef(tables []table) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	project := xml.StartElement{
		Name: xml.Name{Local: "def_project"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: xmlns}},
	}
	if err := enc.EncodeToken(project); err != nil {
		return nil, err
	}

	for _, t := range tables {
		container := xml.StartElement{
			Name: xml.Name{Local: "def_container"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "id"}, Value: t.containerID},
				{Name: xml.Name{Local: "t"}, Value: t.typeName},
			},
		}
		if err := enc.EncodeToken(container); err != nil {
			return nil, err
		}
		tbl := xml.StartElement{
			Name: xml.Name{Local: "def_table"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "id"}, Value: t.containerID},
				{Name: xml.Name{Local: "t"}, Value: t.typeName},
				{Name: xml.Name{Local: "name"}, Value: t.tableName},
			},
		}
		if err := enc.EncodeToken(tbl); err != nil {
			return nil, err
		}
		for j, h := range t.headers {
			header := xml.StartElement{
				Name: xml.Name{Local: fmt.Sprintf("h%d", j)},
				Attr: []xml.Attr{{Name: xml.Name{Local: "t"}, Value: h}},
			}
			if err := enc.EncodeToken(header); err != nil {
				return nil, err
			}
			if err := enc.EncodeToken(header.End()); err != nil {
				return nil, err
			}
		}
		if err := enc.EncodeToken(tbl.End()); err != nil {
			return nil, err
		}
		if err := enc.EncodeToken(container.End()); err != nil {
			return nil, err
		}
	}

	if err := enc.EncodeToken(project.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
