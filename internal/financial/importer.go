package financial

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"crm-backend/internal/models"

	"github.com/extrame/xls"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Formats accepted by the upload endpoint, keyed by lower-case extension.
var Formats = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

var columnAliases = map[string]string{
	"description":      "description",
	"bank":             "bank",
	"amount":           "amount",
	"type":             "type",
	"transaction_date": "transaction_date",
	"date":             "transaction_date",
}

var requiredColumns = []string{"description", "bank", "amount", "type", "transaction_date"}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseResult is the uniform outcome of reading an import file. Success is
// false as soon as one row fails; Data still holds every valid row.
type ParseResult struct {
	Success bool                          `json:"success"`
	Data    []models.FinancialTransaction `json:"data"`
	Errors  []string                      `json:"errors"`
}

// ReadRows reads the first sheet (or the whole CSV) of the file at path into
// a grid of trimmed cells. The format is picked from the extension.
func ReadRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	case ".xls":
		return readXLS(path)
	}
	return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "could not read CSV")
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		// Excel writes a BOM in front of UTF-8 CSV exports
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	book, err := excelize.OpenReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "could not open XLSX file")
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "could not read sheet %q", sheets[0])
	}
	raw, err := book.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "could not read sheet %q", sheets[0])
	}
	date1904 := false
	if props, err := book.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	normalizeDates(rows, raw, date1904)
	return rows, nil
}

// normalizeDates rewrites date-formatted cells of the transaction_date column
// as YYYY-MM-DD. GetRows renders them in the cell's number format (5/1/24),
// while the raw value is the Excel serial day number.
func normalizeDates(rows, raw [][]string, date1904 bool) {
	if len(rows) == 0 {
		return
	}
	col := -1
	for i, h := range rows[0] {
		if columnAliases[headerKey(h)] == "transaction_date" {
			col = i
			break
		}
	}
	if col < 0 {
		return
	}
	for i := 1; i < len(rows) && i < len(raw); i++ {
		if col >= len(rows[i]) || col >= len(raw[i]) {
			continue
		}
		shown, value := strings.TrimSpace(rows[i][col]), strings.TrimSpace(raw[i][col])
		if shown == value || dateRe.MatchString(shown) {
			continue
		}
		serial, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			continue
		}
		rows[i][col] = t.Format(models.DateLayout)
	}
}

func readXLS(path string) ([][]string, error) {
	book, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, errors.Wrap(err, "could not open XLS file")
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no sheets")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for j := 0; j <= row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// ParseRows validates a grid whose first row is the header. Columns are
// matched by name, case-insensitively; "date" is accepted for
// transaction_date. A missing column fails the whole file.
func ParseRows(rows [][]string) (*ParseResult, error) {
	if len(rows) == 0 {
		return nil, errors.New("file is empty")
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		if col, ok := columnAliases[headerKey(h)]; ok {
			if _, seen := index[col]; !seen {
				index[col] = i
			}
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))
	}

	res := &ParseResult{
		Success: true,
		Data:    []models.FinancialTransaction{},
		Errors:  []string{},
	}
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		cell := func(col string) string {
			if j := index[col]; j < len(row) {
				return strings.TrimSpace(row[j])
			}
			return ""
		}
		tx, problem := parseRow(cell)
		if problem != "" {
			res.Success = false
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %s", i+2, problem))
			continue
		}
		res.Data = append(res.Data, *tx)
	}
	return res, nil
}

func headerKey(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

func parseRow(cell func(string) string) (*models.FinancialTransaction, string) {
	var empty []string
	for _, col := range requiredColumns {
		if cell(col) == "" {
			empty = append(empty, col)
		}
	}
	if len(empty) > 0 {
		return nil, "missing required field(s): " + strings.Join(empty, ", ")
	}

	tx := models.FinancialTransaction{
		Description: cell("description"),
		Bank:        cell("bank"),
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(cell("amount"), ",", ""))
	if err != nil {
		return nil, fmt.Sprintf("invalid amount '%s'", cell("amount"))
	}
	tx.Amount = amount.Round(2)

	typ, ok := models.ParseTransactionType(cell("type"))
	if !ok {
		return nil, fmt.Sprintf("invalid type '%s' (must be Credit or Debit)", cell("type"))
	}
	tx.Type = typ

	raw := cell("transaction_date")
	if !dateRe.MatchString(raw) {
		return nil, fmt.Sprintf("invalid transaction_date '%s' (expected YYYY-MM-DD)", raw)
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return nil, fmt.Sprintf("invalid transaction_date '%s' (expected YYYY-MM-DD)", raw)
	}
	tx.TransactionDate = date

	return &tx, ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
