// SPDX-License-Identifier: MIT

package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/viktor-platform/scia-bridge/internal/scia"
)

// ModelWorkbook exports the model to a three-sheet workbook: Nodes,
// Members and Loads. The model download endpoint serves it directly.
func ModelWorkbook(model *scia.Model) ([]byte, error) {
	return renderWorkbook(model)
}

func renderWorkbook(model *scia.Model) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Nodes"); err != nil {
		return nil, err
	}
	if err := setRow(f, "Nodes", 1, "Name", "X (m)", "Y (m)", "Z (m)"); err != nil {
		return nil, err
	}
	for i, n := range model.Nodes {
		if err := setRow(f, "Nodes", i+2, n.Name, n.X, n.Y, n.Z); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet("Members"); err != nil {
		return nil, err
	}
	if err := setRow(f, "Members", 1, "Name", "Begin", "End", "Cross-section"); err != nil {
		return nil, err
	}
	for i, b := range model.Beams {
		if err := setRow(f, "Members", i+2, b.Name, b.Begin.Name, b.End.Name, b.CrossSection.Name); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet("Loads"); err != nil {
		return nil, err
	}
	if err := setRow(f, "Loads", 1, "Name", "Case", "Slab", "Direction", "Value (N/m2)"); err != nil {
		return nil, err
	}
	for i, sl := range model.SurfaceLoads {
		if err := setRow(f, "Loads", i+2, sl.Name, sl.Case.Name, sl.Plane.Name, string(sl.Direction), sl.Value); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
