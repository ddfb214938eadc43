package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func khsDataset() Dataset {
	return Dataset{
		Headers: []string{"Kode MK", "Nama Mata Kuliah", "SKS", "Huruf"},
		Rows: []map[string]string{
			{"Kode MK": "IF101", "Nama Mata Kuliah": "Algoritma", "SKS": "3", "Huruf": "A"},
			{"Kode MK": "IF102", "Nama Mata Kuliah": "Basis Data", "SKS": "3", "Huruf": "B+"},
			{"Kode MK": "IF103", "Nama Mata Kuliah": "Jaringan Komputer", "SKS": "2", "Huruf": "B"},
		},
	}
}

func TestExcelExporterRenderShape(t *testing.T) {
	data := khsDataset()
	raw, err := NewExcelExporter().Render(Sheet{Name: "KHS", Data: data})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows("KHS")
	require.NoError(t, err)
	require.Len(t, rows, len(data.Rows)+1)

	assert.Equal(t, data.Headers, rows[0])
	for i, row := range rows[1:] {
		require.Len(t, row, len(data.Headers))
		for col, header := range data.Headers {
			assert.Equal(t, data.Rows[i][header], row[col])
		}
	}
}

func TestExcelExporterHeaderStyledDistinctly(t *testing.T) {
	raw, err := NewExcelExporter().Render(Sheet{Name: "KHS", Data: khsDataset()})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	headerStyle, err := f.GetCellStyle("KHS", "A1")
	require.NoError(t, err)
	dataStyle, err := f.GetCellStyle("KHS", "A2")
	require.NoError(t, err)

	assert.NotZero(t, headerStyle)
	assert.NotEqual(t, dataStyle, headerStyle)

	style, err := f.GetStyle(headerStyle)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestExcelExporterMultipleSheets(t *testing.T) {
	raw, err := NewExcelExporter().Render(
		Sheet{Name: "KHS", Data: khsDataset()},
		Sheet{Name: "Rekap", Data: Dataset{Headers: []string{"NIM", "Hadir"}, Rows: []map[string]string{{"NIM": "2021001", "Hadir": "12"}}}},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{"KHS", "Rekap"}, f.GetSheetList())

	rows, err := f.GetRows("Rekap")
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestExcelExporterRejectsEmptyInput(t *testing.T) {
	_, err := NewExcelExporter().Render()
	require.Error(t, err)

	_, err = NewExcelExporter().Render(Sheet{Name: "Kosong"})
	require.Error(t, err)
}
