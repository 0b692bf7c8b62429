package products

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var headerAliases = map[string]string{
	"name":           "name",
	"product":        "name",
	"product name":   "name",
	"product_name":   "name",
	"type":           "type",
	"product type":   "type",
	"sales_price":    "sales_price",
	"sales price":    "sales_price",
	"sell price":     "sales_price",
	"purchase_price": "purchase_price",
	"purchase price": "purchase_price",
	"cost":           "purchase_price",
	"hsn_code":       "hsn_code",
	"hsn code":       "hsn_code",
	"hsn":            "hsn_code",
	"tax_name":       "tax_name",
	"tax name":       "tax_name",
	"tax":            "tax_name",
}

// ErrEmptyCatalogue reports a sheet without data rows.
var ErrEmptyCatalogue = errors.New("catalogue file is empty")

// ParseCatalogue reads product rows from an xlsx workbook (first sheet) or a
// csv file, chosen by filename extension. Rows that fail to parse are
// reported in skipped with their 1-based sheet row number.
func ParseCatalogue(filename string, r io.Reader) ([]Product, []ImportRowError, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(r)
	default:
		return nil, nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, ErrEmptyCatalogue
	}

	cols := mapColumns(rows[0])
	if _, ok := cols["name"]; !ok {
		return nil, nil, fmt.Errorf("missing required column: name")
	}

	out := make([]Product, 0, len(rows)-1)
	var skipped []ImportRowError
	for i := 1; i < len(rows); i++ {
		p, err := parseRow(rows[i], cols)
		if err != nil {
			skipped = append(skipped, ImportRowError{Row: i + 1, Message: err.Error()})
			continue
		}
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out, skipped, nil
}

func readWorkbook(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func parseRow(cells []string, cols map[string]int) (Product, error) {
	p := Product{
		Name: readCell(cells, cols, "name"),
		Type: strings.ToLower(readCell(cells, cols, "type")),
	}
	if p.Name == "" {
		return p, nil
	}
	if p.Type == "" {
		p.Type = TypeGoods
	}
	if p.Type != TypeGoods && p.Type != TypeService {
		return p, fmt.Errorf("type %q must be goods or service", p.Type)
	}
	var err error
	if p.SalesPrice, err = parseMoney(readCell(cells, cols, "sales_price")); err != nil {
		return p, fmt.Errorf("sales_price: %w", err)
	}
	if p.PurchasePrice, err = parseMoney(readCell(cells, cols, "purchase_price")); err != nil {
		return p, fmt.Errorf("purchase_price: %w", err)
	}
	if hsn := readCell(cells, cols, "hsn_code"); hsn != "" {
		p.HSNCode = &hsn
	}
	if tax := readCell(cells, cols, "tax_name"); tax != "" {
		p.TaxName = &tax
	}
	return p, nil
}

func mapColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for idx, raw := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		if canonical, ok := headerAliases[key]; ok {
			if _, seen := cols[canonical]; !seen {
				cols[canonical] = idx
			}
		}
	}
	return cols
}

func readCell(row []string, cols map[string]int, key string) string {
	idx, ok := cols[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseMoney(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q must not be negative", raw)
	}
	return d.Round(2), nil
}
