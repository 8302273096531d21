package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
)

// Roster column headers
const (
	ColumnCheck = "Check"
	ColumnName  = "Student Name"
	ColumnID    = "Canvas ID"
)

// ErrUnsupportedFormat is returned for roster files other than .csv and .xlsx
var ErrUnsupportedFormat = errors.New("unsupported roster format")

// Load reads the tracked students from a .csv or .xlsx roster.
// Only rows whose Check column is "yes" are kept; the result is sorted by name.
func Load(path string) ([]*contracts.Student, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	students, err := parseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return students, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
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
		return nil, fmt.Errorf("read roster csv: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open roster workbook: %w", err)
	}
	defer f.Close()

	// 첫 번째 시트만 사용
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("roster workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// parseRows maps the header row to column indexes and builds students
func parseRows(rows [][]string) ([]*contracts.Student, error) {
	if len(rows) == 0 {
		return nil, errors.New("missing header row")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range []string{ColumnCheck, ColumnName, ColumnID} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	students := make([]*contracts.Student, 0, len(rows)-1)
	seen := make(map[int]int, len(rows)-1)
	for n, row := range rows[1:] {
		if !strings.EqualFold(cell(row, ColumnCheck), "yes") {
			continue
		}

		id, err := strconv.Atoi(cell(row, ColumnID))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid %s %q", n+2, ColumnID, cell(row, ColumnID))
		}
		if first, ok := seen[id]; ok {
			return nil, fmt.Errorf("row %d: duplicate %s %d (first on row %d)", n+2, ColumnID, id, first)
		}
		seen[id] = n + 2

		students = append(students, &contracts.Student{
			ID:   id,
			Name: cell(row, ColumnName),
		})
	}

	sort.SliceStable(students, func(i, j int) bool {
		return students[i].Name < students[j].Name
	})

	return students, nil
}
