package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// timestampLayouts are tried in order when parsing timestamp cells.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadCSV parses delimited tabular text into a Table. The first record is
// the header. Column types come from overrides where the column name
// matches; every other column gets the narrowest type that parses all of
// its non-empty cells. A cell that does not parse as an overridden type is
// an error, never a silent fallback.
func ReadCSV(r io.Reader, overrides map[string]Type) (*Table, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv records: %w", err)
	}

	cols := make([]Column, len(header))
	for i, name := range header {
		colType, ok := overrides[name]
		if !ok {
			colType = inferType(records, i)
		}
		cols[i] = Column{Name: name, Type: colType}
	}

	rows := make([][]any, len(records))
	for ri, record := range records {
		if len(record) != len(cols) {
			return nil, fmt.Errorf("csv row %d has %d cells, want %d", ri+1, len(record), len(cols))
		}
		cells := make([]any, len(cols))
		for ci, raw := range record {
			cell, err := parseCell(raw, cols[ci].Type)
			if err != nil {
				return nil, fmt.Errorf("csv row %d column %q: %w", ri+1, cols[ci].Name, err)
			}
			cells[ci] = cell
		}
		rows[ri] = cells
	}

	return &Table{cols: cols, rows: rows, failed: false}, nil
}

// inferType picks the narrowest scalar type that parses every non-empty
// cell of the column. Decimal is excluded: it is indistinguishable from
// float in source text and only reachable via an override.
func inferType(records [][]string, col int) Type {
	candidates := []Type{TypeInt, TypeFloat, TypeBool, TypeTimestamp}
	seen := false
	for _, candidate := range candidates {
		ok := true
		for _, record := range records {
			if col >= len(record) {
				continue
			}
			raw := strings.TrimSpace(record[col])
			if raw == "" {
				continue
			}
			seen = true
			if _, err := parseCell(raw, candidate); err != nil {
				ok = false
				break
			}
		}
		if ok && seen {
			return candidate
		}
	}
	return TypeString
}

func parseCell(raw string, colType Type) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	switch colType {
	case TypeString:
		return raw, nil
	case TypeInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse int %q: %w", raw, err)
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse float %q: %w", raw, err)
		}
		return v, nil
	case TypeBool:
		switch strings.ToLower(raw) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, fmt.Errorf("parse bool %q", raw)
		}
	case TypeDecimal:
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse decimal %q: %w", raw, err)
		}
		return v, nil
	case TypeTimestamp:
		for _, layout := range timestampLayouts {
			if v, err := time.Parse(layout, raw); err == nil {
				return v.UTC(), nil
			}
		}
		return nil, fmt.Errorf("parse timestamp %q", raw)
	default:
		return nil, fmt.Errorf("unknown column type %q", colType)
	}
}
