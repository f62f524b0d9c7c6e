package entities

import "math"

// TestRecord is a normalized lab-test entry produced by the catalog loader.
// Records are immutable after load; the loader rebuilds the whole list on a
// refresh rather than mutating individual records.
type TestRecord struct {
	TestName           string `json:"test_name"`
	ShortDescription   string `json:"short_description,omitempty"`
	Description        string `json:"description,omitempty"`
	SalePrice          float64 `json:"sale_price"`
	RegularPrice       float64 `json:"regular_price"`
	DiscountPercentage int    `json:"discount_percentage"`
	LabName            string `json:"lab_name"`
	SampleRequired     string `json:"sample_required,omitempty"`
	ReportingTime      string `json:"reporting_time,omitempty"`
}

// ComputeDiscountPercentage derives the discount from the two prices,
// clamped to 0..100. Either price being zero means "unknown" and yields 0;
// a sale price above the regular price also yields 0.
func ComputeDiscountPercentage(regularPrice, salePrice float64) int {
	if regularPrice <= 0 || salePrice <= 0 {
		return 0
	}
	pct := int(math.Round((regularPrice - salePrice) / regularPrice * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ScoredTestRecord pairs a TestRecord with a relevance score. Produced
// transiently by search operations, never persisted.
type ScoredTestRecord struct {
	TestRecord
	RelevanceScore int `json:"relevance_score"`
}
