package exporter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"amazonworker/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestSaveJSONL(t *testing.T) {
	dir := t.TempDir()
	e := NewFileExporter(filepath.Join(dir, "out", "products.jsonl"), filepath.Join(dir, "out", "products.csv"))

	products := []model.Product{
		{ASIN: "B012345678", Title: "Desk Lamp", BulletFeatures: []string{"LED", "Dimmable"}},
		{}, // a record with every optional field absent is still valid
	}

	err := e.SaveJSONL(products)
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out", "products.jsonl"))
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)

	var first map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "B012345678", first["asin"])
	assert.Equal(t, "Desk Lamp", first["title"])

	// Absent fields must be excluded, not serialized as nulls
	assert.Equal(t, "{}", lines[1])
}

func TestSaveCSV(t *testing.T) {
	dir := t.TempDir()
	e := NewFileExporter(filepath.Join(dir, "products.jsonl"), filepath.Join(dir, "products.csv"))

	products := []model.Product{
		{
			ASIN:           "B012345678",
			Title:          "Desk Lamp",
			Price:          "$19.99",
			BulletFeatures: []string{"LED", "Dimmable"},
			Breadcrumbs:    []string{"Home", "Lighting"},
		},
	}

	err := e.SaveCSV(products)
	assert.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "products.csv"))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	assert.Equal(t, csvColumns, rows[0])
	assert.Equal(t, "B012345678", rows[1][0])
	assert.Equal(t, "$19.99", rows[1][2])

	// List columns are JSON encoded into a single cell
	assert.Equal(t, `["LED","Dimmable"]`, rows[1][6])
	assert.Equal(t, `["Home","Lighting"]`, rows[1][7])
}
