package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
)

const rosterCSV = `Check,Student Name,Canvas ID
yes,Zoe Park,30
no,Ignored Kid,40
 YES ,Alan Smith,10
yes,Alice Jones,20
,Blank Check,50
`

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte(rosterCSV), 0o644))

	students, err := Load(path)
	require.NoError(t, err)

	require.Len(t, students, 3)
	assert.Equal(t, "Alan Smith", students[0].Name)
	assert.Equal(t, 10, students[0].ID)
	assert.Equal(t, "Alice Jones", students[1].Name)
	assert.Equal(t, "Zoe Park", students[2].Name)
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Check", "Student Name", "Canvas ID"},
		{"yes", "Bob Lee", 2},
		{"no", "Skip Me", 3},
		{"Yes", "Ann Kim", 1},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	students, err := Load(path)
	require.NoError(t, err)

	require.Len(t, students, 2)
	assert.Equal(t, &contracts.Student{ID: 1, Name: "Ann Kim"}, students[0])
	assert.Equal(t, &contracts.Student{ID: 2, Name: "Bob Lee"}, students[1])
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	tests := []struct {
		name string
		path string
	}{
		{"unsupported extension", write("students.txt", rosterCSV)},
		{"missing column", write("nocol.csv", "Check,Student Name\nyes,A\n")},
		{"bad id", write("badid.csv", "Check,Student Name,Canvas ID\nyes,A,abc\n")},
		{"duplicate id", write("dup.csv", "Check,Student Name,Canvas ID\nyes,A,7\nyes,B,7\n")},
		{"empty file", write("empty.csv", "")},
		{"missing file", filepath.Join(dir, "nope.csv")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestParseRows_DuplicateID(t *testing.T) {
	rows := [][]string{
		{"Check", "Student Name", "Canvas ID"},
		{"yes", "Ann Kim", "7"},
		{"no", "Ann Kim", "7"},
		{"yes", "Bob Lee", "7"},
	}

	_, err := parseRows(rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 4")
	assert.Contains(t, err.Error(), "first on row 2")

	// unchecked rows are not counted
	students, err := parseRows(rows[:3])
	require.NoError(t, err)
	require.Len(t, students, 1)
}

func TestParseCSV_BOMHeader(t *testing.T) {
	rows, err := parseCSV(strings.NewReader("\ufeffCheck,Student Name,Canvas ID\nyes,A,1\n"))
	require.NoError(t, err)

	students, err := parseRows(rows)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, students[0].ID)
}

func TestSearch(t *testing.T) {
	students := []*contracts.Student{
		{ID: 1, Name: "Alan Smith"},
		{ID: 2, Name: "Alice Jones"},
		{ID: 3, Name: "Sal Rivera"},
	}

	tests := []struct {
		query  string
		status MatchStatus
		wantID int
	}{
		{"al", Ambiguous, 0},
		{"alan", Found, 1},
		{"ALAN", Found, 1},
		{"zzz", Absent, 0},
		{"jones", Found, 2},
		{"sal", Found, 3},
		{"a", Ambiguous, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			result := Search(students, tt.query)
			assert.Equal(t, tt.status, result.Status)

			if tt.status == Found {
				require.NotNil(t, result.Student)
				assert.Equal(t, tt.wantID, result.Student.ID)
				assert.NoError(t, result.Err())
			} else {
				assert.Nil(t, result.Student)
				assert.ErrorIs(t, result.Err(), ErrStudentNotFound)
			}
		})
	}
}

func TestFindByID(t *testing.T) {
	students := []*contracts.Student{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}

	assert.Equal(t, "B", FindByID(students, 2).Name)
	assert.Nil(t, FindByID(students, 9))
}
