package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsheet/internal/domain"
	"dealsheet/internal/sheet"
)

func readAll(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = 3
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteLetter_DealOnly(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteLetter(&domain.DealLetter{Deal: domain.Fields{"advertiser_name": "Acme, Inc."}}))
	w.Flush()
	require.NoError(t, w.Error())

	rows := readAll(t, buf.Bytes())
	require.Len(t, rows, 1+len(sheet.DealRows))
	assert.Equal(t, sheet.DealHeader[:], rows[0])
	assert.Equal(t, "Advertiser Name", rows[3][0])
	assert.Equal(t, "Acme, Inc.", rows[3][1])
}

func TestWriteLetter_MatchesWorkbookLayout(t *testing.T) {
	letter := &domain.DealLetter{
		Deal:       domain.Fields{"start_date": "2025-03-22"},
		Placements: []domain.Fields{{}, {"start_date": "2025-04-01"}},
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteLetter(letter))
	w.Flush()

	rows := readAll(t, buf.Bytes())
	plan := sheet.Plan(letter)
	require.Len(t, rows, len(plan))
	for i, line := range plan {
		assert.Equal(t, line.Cells[:], rows[i], "row %d", i+1)
	}
	assert.Equal(t, []string{"", "", ""}, rows[23])
}

func TestExport_WritesBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, &domain.DealLetter{}))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), BOM))
	rows := readAll(t, buf.Bytes()[len(BOM):])
	assert.Len(t, rows, 1+len(sheet.DealRows))
}

func TestWriteLetter_EscapesFormulas(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{`=HYPERLINK("http://x","y")`, `'=HYPERLINK("http://x","y")`},
		{"+91 98765 43210", "'+91 98765 43210"},
		{"-5", "'-5"},
		{"@SUM(A1)", "'@SUM(A1)"},
		{"Acme = Foods", "Acme = Foods"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			require.NoError(t, w.WriteLetter(&domain.DealLetter{Deal: domain.Fields{"advertiser_name": tt.value}}))
			w.Flush()

			rows := readAll(t, buf.Bytes())
			assert.Equal(t, tt.want, rows[3][1])
		})
	}
}

func TestEscapeFormula(t *testing.T) {
	assert.Equal(t, "'\tcmd", escapeFormula("\tcmd"))
	assert.Equal(t, "'\rcmd", escapeFormula("\rcmd"))
	assert.Equal(t, "'=1+1", escapeFormula("=1+1"))
	assert.Equal(t, "", escapeFormula(""))
	assert.Equal(t, "N/A", escapeFormula("N/A"))
}
