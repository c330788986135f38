package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"eaisdo/model"
)

func TestFileName(t *testing.T) {
	ts := time.Date(2025, 3, 7, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "пользователи_и_узлы_2025-03-07.xlsx", FileName(ts))
}

func TestWriteNodes(t *testing.T) {
	nodes := []model.Node{
		{ID: "1", RegionCode: "77", Region: "Москва", District: "Центральный", NodeName: "msk", TechnicalSolution: "ТР-1", Status: model.StatusActive},
		{ID: "2", RegionCode: "23", Region: "Краснодарский край", District: "Южный", NodeName: "krd", TechnicalSolution: "ТР-2", Status: model.StatusError},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteNodes(&buf, nodes))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{"77", "Москва", "Центральный", "msk", "ТР-1", "Активен"}, rows[1])
	assert.Equal(t, "Ошибка", rows[2][5])
}

func TestWriteNodesEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteNodes(&buf, nil), ErrEmpty)
	assert.Zero(t, buf.Len())
}
