package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"expedientes-backend/models"

	"github.com/xuri/excelize/v2"
)

// ExportJSON renders the full analysis, indented for human reading.
func ExportJSON(data models.CaseData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// ExportSummary renders the shareable case card for messaging apps.
func ExportSummary(data models.CaseData) string {
	hearing := "No programada"
	if len(data.Hearings) > 0 {
		hearing = data.Hearings[0].Date.Value
	}

	var people []string
	for _, p := range data.People {
		people = append(people, fmt.Sprintf("• %s: %s", p.Role.Value, p.Name.Value))
	}

	overview := data.Motive.Value
	if len([]rune(overview)) > 500 {
		overview = string([]rune(overview)[:500]) + " [...]"
	}

	return strings.Join([]string{
		"📁 FICHA DE CASO: " + data.Rit.Value,
		"📅 PRÓX. AUDIENCIA: " + hearing,
		"",
		"👥 INVOLUCRADOS (DCE SAN BERNARDO):",
		strings.Join(people, "\n"),
		"",
		"📝 RESUMEN DENUNCIA:",
		overview,
		"",
		"--- Generado por Asistente Jurídico AI ---",
	}, "\n")
}

// tableHeaders is the fixed spreadsheet column order.
var tableHeaders = []string{
	"Nombres NNA", "Apellido Paterno", "Apellido Materno", "RUT NNA",
	"Fecha Entrega", "RIT", "Audiencia", "Adulto Responsable",
	"Parentesco", "RUT Adulto", "Teléfono", "Dirección",
}

// ExportXLSX renders the consolidated table of all given records as a
// spreadsheet.
func ExportXLSX(records []*models.CaseRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Casos"
	f.SetSheetName("Sheet1", sheet)

	for col, h := range tableHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	rowNr := 2
	for _, record := range records {
		for _, row := range ConsolidateRows(record) {
			values := []string{
				row.NnaNames, row.NnaLast1, row.NnaLast2, row.NnaRut,
				row.DeliveryDate, row.Rit, row.Hearing, row.AdultName,
				row.AdultRel, row.AdultRut, row.AdultPhone, row.AdultAddress,
			}
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, rowNr)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return nil, err
				}
			}
			rowNr++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
