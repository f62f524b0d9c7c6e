package catalog

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
)

// labNameTable maps a marker found in a cleaned filename to the canonical lab
// name. This is the only place lab identity is established.
var labNameTable = []struct {
	marker    string
	canonical string
}{
	{"chughtai", "Chughtai Lab"},
	{"ayzal", "Ayzal Lab"},
	{"biotech", "BioTech Lab"},
	{"testzone", "Test Zone Diagnostic Center"},
}

// Vendor-export suffixes stripped from filenames before lab-name matching.
var fileSuffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*-\s*wc-product-export.*$`),
	regexp.MustCompile(`(?i)\s*-\s*sheet1\s*$`),
	regexp.MustCompile(`(?i)\s*lab\s+tests\s*$`),
}

var (
	sampleRequiredRe = regexp.MustCompile(`(?i)Sample Required:\s*([^.]+)`)
	reportingTimeRe  = regexp.MustCompile(`(?i)Reporting Time:\s*([^.]+)`)
	nonPriceCharsRe  = regexp.MustCompile(`[^0-9.]`)
)

// LoadDirectory parses every CSV export in dir into a flat list of test
// records, ordered by file discovery order then row order. It never returns
// an error: a missing directory or a malformed file is logged and skipped,
// degrading to fewer (or zero) tests.
func LoadDirectory(dir string) []entities.TestRecord {
	fileEntries, err := os.ReadDir(dir)
	if err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("catalog directory unavailable")
		return nil
	}

	// os.ReadDir returns entries sorted by filename, so discovery order is
	// stable across loads.
	names := make([]string, 0, len(fileEntries))
	for _, entry := range fileEntries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			names = append(names, entry.Name())
		}
	}

	var records []entities.TestRecord
	for _, name := range names {
		labName := CanonicalLabName(name)
		fileRecords, err := loadFile(filepath.Join(dir, name), labName)
		if err != nil {
			log.Error().Err(err).Str("file", name).Msg("skipping malformed catalog file")
			continue
		}
		records = append(records, fileRecords...)
	}

	log.Info().Int("tests", len(records)).Int("files", len(names)).Msg("catalog loaded")
	return records
}

// CanonicalLabName derives the canonical lab name from a vendor export
// filename. Unknown vendors fall back to the cleaned filename verbatim.
func CanonicalLabName(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	for _, re := range fileSuffixPatterns {
		name = re.ReplaceAllString(name, "")
	}
	name = strings.TrimSpace(name)

	compact := strings.ReplaceAll(strings.ToLower(name), " ", "")
	for _, entry := range labNameTable {
		if strings.Contains(compact, entry.marker) {
			return entry.canonical
		}
	}
	return name
}

func loadFile(path, labName string) ([]entities.TestRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []entities.TestRecord
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("dropping malformed csv row")
			continue
		}

		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(fields) {
				row[h] = fields[i]
			}
		}

		record, ok := normalizeRow(row, labName)
		if !ok {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// normalizeRow converts a header-keyed CSV row into a TestRecord. Two vendor
// schemas are recognized; anything else silently fails to normalize. Rows
// producing an empty test name are dropped.
func normalizeRow(row map[string]string, labName string) (entities.TestRecord, bool) {
	switch {
	case hasColumn(row, "Product Name"):
		record := entities.TestRecord{
			TestName:         strings.TrimSpace(row["Product Name"]),
			ShortDescription: strings.TrimSpace(row["Short Description"]),
			RegularPrice:     parsePrice(row["Original Price"]),
			SalePrice:        parsePrice(row["Discounted Price (40% Off)"]),
			LabName:          labName,
		}
		if record.TestName == "" {
			return entities.TestRecord{}, false
		}
		record.DiscountPercentage = entities.ComputeDiscountPercentage(record.RegularPrice, record.SalePrice)
		return record, true

	case hasColumn(row, "Name"):
		description := strings.TrimSpace(row["Description"])
		record := entities.TestRecord{
			TestName:         strings.TrimSpace(row["Name"]),
			ShortDescription: strings.TrimSpace(row["Short description"]),
			Description:      description,
			SalePrice:        parsePrice(row["Sale price"]),
			RegularPrice:     parsePrice(row["Regular price"]),
			LabName:          labName,
			SampleRequired:   mineField(sampleRequiredRe, description),
			ReportingTime:    mineField(reportingTimeRe, description),
		}
		if record.TestName == "" {
			return entities.TestRecord{}, false
		}
		record.DiscountPercentage = entities.ComputeDiscountPercentage(record.RegularPrice, record.SalePrice)
		return record, true
	}

	return entities.TestRecord{}, false
}

func hasColumn(row map[string]string, name string) bool {
	_, ok := row[name]
	return ok
}

// parsePrice strips everything except digits and '.' before parsing.
// Empty or unparsable values mean "unknown" and yield 0.
func parsePrice(raw string) float64 {
	cleaned := nonPriceCharsRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func mineField(re *regexp.Regexp, description string) string {
	match := re.FindStringSubmatch(description)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}
