package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoHeader is returned when a CSV input has no header row.
var ErrNoHeader = errors.New("csv input has no header row")

// Header aliases accepted for each logical column. Lookups are
// case-insensitive and ignore surrounding whitespace.
var (
	itemHeaders     = []string{"item code", "item", "item_code"}
	locationHeaders = []string{"inv org", "location", "inv_org", "org"}
	categoryHeaders = []string{"type", "category"}
	currentHeaders  = []string{"current inv", "current", "current_inventory", "start inv"}
	targetHeaders   = []string{"target inv", "target", "target_inventory"}
	metricHeaders   = []string{"metric"}
	valueHeaders    = []string{"value"}

	plantHeaders  = []string{"plant", "site"}
	parentHeaders = []string{"parent", "parent item"}
	childHeaders  = []string{"child", "child item"}
	ratioHeaders  = []string{"ratio", "quantity per", "qty"}
)

// header maps normalized column names to their index.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"`))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

// col returns the index of the first alias present, or -1.
func (h header) col(aliases []string) int {
	for _, a := range aliases {
		if i, ok := h[a]; ok {
			return i
		}
	}
	return -1
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func number(row []string, i int) (float64, bool) {
	s := strings.ReplaceAll(field(row, i), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	return cr
}

func readAll(r io.Reader) (header, [][]string, error) {
	rows, err := newReader(r).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrNoHeader
	}
	return newHeader(rows[0]), rows[1:], nil
}

// ReadRecords parses inventory rows. Two layouts are accepted:
//
//   - flat: Item Code, Inv Org, Type, Current Inv, Target Inv
//   - long: Item Code, Inv Org, Type, Metric, Value (one metric per row);
//     MetricInventory rows carry Current, MetricTarget rows carry Target.
//
// Rows are returned in input order, including rows the graph builder will
// later drop for a missing item or location. Unparseable numbers are
// treated as missing.
func ReadRecords(r io.Reader) ([]Record, error) {
	h, rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	itemCol := h.col(itemHeaders)
	locCol := h.col(locationHeaders)
	if itemCol < 0 || locCol < 0 {
		return nil, fmt.Errorf("inventory csv: missing item code or inventory location column")
	}
	catCol := h.col(categoryHeaders)
	metricCol, valueCol := h.col(metricHeaders), h.col(valueHeaders)
	long := metricCol >= 0 && valueCol >= 0

	curCol, tgtCol := h.col(currentHeaders), h.col(targetHeaders)

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := Record{
			Item:     field(row, itemCol),
			Location: field(row, locCol),
			Category: field(row, catCol),
		}

		if long {
			v, ok := number(row, valueCol)
			switch field(row, metricCol) {
			case MetricInventory:
				rec.Current, rec.HasCurrent = v, ok
			case MetricTarget:
				rec.Target, rec.HasTarget = v, ok
			}
		} else {
			rec.Current, rec.HasCurrent = number(row, curCol)
			rec.Target, rec.HasTarget = number(row, tgtCol)
		}

		records = append(records, rec)
	}
	return records, nil
}

// ReadBOM parses bill-of-materials rows. Incomplete rows are kept; the
// graph builder drops and counts them.
func ReadBOM(r io.Reader) ([]BOM, error) {
	h, rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	parentCol, childCol := h.col(parentHeaders), h.col(childHeaders)
	if parentCol < 0 || childCol < 0 {
		return nil, fmt.Errorf("bom csv: missing parent or child column")
	}
	siteCol, ratioCol := h.col(plantHeaders), h.col(ratioHeaders)

	boms := make([]BOM, 0, len(rows))
	for _, row := range rows {
		b := BOM{
			Parent: field(row, parentCol),
			Child:  field(row, childCol),
			Site:   field(row, siteCol),
		}
		b.Ratio, _ = number(row, ratioCol)
		boms = append(boms, b)
	}
	return boms, nil
}
