package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

const previewRowLimit = 5

type Preview struct {
	Headers        []string   `json:"headers"`
	Rows           [][]string `json:"rows"`
	TotalRows      int        `json:"totalRows"`
	Nota1Media     float64    `json:"nota1Media"`
	Nota2Media     float64    `json:"nota2Media"`
	NotaFinalMedia float64    `json:"notaFinalMedia"`
}

// buildPreview parses a header-delimited CSV and computes the grade averages.
// The first row names the columns; numeric-looking cells are typed as numbers
// and blank lines are skipped. The nota means only count rows where both
// nota1 and nota2 carry a non-zero numeric value.
func buildPreview(data []byte) (Preview, error) {
	headers, records, err := parseCsvTable(data)
	if err != nil {
		return Preview{}, err
	}

	rows := make([][]string, 0, previewRowLimit)
	for _, record := range records {
		if len(rows) == previewRowLimit {
			break
		}

		cells := make([]string, len(headers))
		for i, header := range headers {
			cells[i] = cellString(record[header])
		}
		rows = append(rows, cells)
	}

	var nota1Sum, nota2Sum, notaFinalSum float64
	validRows := 0
	for _, record := range records {
		nota1, ok1 := record["nota1"]
		nota2, ok2 := record["nota2"]
		if !ok1 || !ok2 || !truthy(nota1) || !truthy(nota2) {
			continue
		}

		n1, numeric1 := toNumber(nota1)
		n2, numeric2 := toNumber(nota2)
		if !numeric1 || !numeric2 {
			continue
		}

		nota1Sum += n1
		nota2Sum += n2
		notaFinalSum += (n1 + n2) / 2
		validRows++
	}

	preview := Preview{
		Headers:   headers,
		Rows:      rows,
		TotalRows: len(records),
	}
	if validRows > 0 {
		preview.Nota1Media = nota1Sum / float64(validRows)
		preview.Nota2Media = nota2Sum / float64(validRows)
		preview.NotaFinalMedia = notaFinalSum / float64(validRows)
	}

	return preview, nil
}

func parseCsvTable(data []byte) ([]string, []map[string]any, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("csv has no header row")
	}

	headers := lines[0]
	var records []map[string]any
	for _, line := range lines[1:] {
		if blankLine(line) {
			continue
		}

		record := make(map[string]any, len(headers))
		for i, header := range headers {
			if i >= len(line) {
				break
			}
			record[header] = typeCell(line[i])
		}
		records = append(records, record)
	}

	return headers, records, nil
}

func blankLine(line []string) bool {
	for _, cell := range line {
		if cell != "" {
			return false
		}
	}
	return true
}

func typeCell(cell string) any {
	if cell == "" {
		return cell
	}
	if value, err := strconv.ParseFloat(cell, 64); err == nil {
		return value
	}
	return cell
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case float64:
		return v != 0
	}
	return false
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func cellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", value)
}
