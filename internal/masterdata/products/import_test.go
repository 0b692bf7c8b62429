package products

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCatalogueCSV(t *testing.T) {
	data := "Name,Type,Sales Price,Purchase Price,HSN Code,Tax Name\n" +
		"Office Chair,goods,\"1,500.00\",900,9401,GST18\n" +
		"Consulting,service,2000,,998311,\n" +
		"Broken,gadget,10,5,,\n" +
		",,,,,\n"

	rows, skipped, err := ParseCatalogue("catalogue.csv", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Office Chair", rows[0].Name)
	assert.Equal(t, "1500", rows[0].SalesPrice.String())
	require.NotNil(t, rows[0].TaxName)
	assert.Equal(t, "GST18", *rows[0].TaxName)

	assert.Equal(t, TypeService, rows[1].Type)
	assert.True(t, rows[1].PurchasePrice.IsZero())
	assert.Nil(t, rows[1].TaxName)

	require.Len(t, skipped, 1)
	assert.Equal(t, 4, skipped[0].Row)
}

func TestParseCatalogueWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	values := [][]any{
		{"product_name", "sales_price", "purchase_price", "hsn"},
		{"Laptop", "55000", "48000", "8471"},
		{"Mouse", "499.5", "300", ""},
	}
	for i, row := range values {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, skipped, err := ParseCatalogue("products.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, rows, 2)
	assert.Equal(t, TypeGoods, rows[0].Type)
	require.NotNil(t, rows[0].HSNCode)
	assert.Equal(t, "8471", *rows[0].HSNCode)
	assert.Equal(t, "499.5", rows[1].SalesPrice.String())
	assert.Nil(t, rows[1].HSNCode)
}

func TestParseCatalogueRejects(t *testing.T) {
	_, _, err := ParseCatalogue("products.pdf", strings.NewReader("x"))
	assert.Error(t, err)

	_, _, err = ParseCatalogue("products.csv", strings.NewReader("sku,price\nA,1\n"))
	assert.ErrorContains(t, err, "missing required column")

	_, _, err = ParseCatalogue("products.csv", strings.NewReader("name\n"))
	assert.ErrorIs(t, err, ErrEmptyCatalogue)
}
