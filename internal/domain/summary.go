package domain

import "time"

// MissingReasonSentinel is reported when every reason value is absent.
const MissingReasonSentinel = "N/A"

// DatasetCount pairs a dataset identifier with its failure count.
type DatasetCount struct {
	Dataset string `json:"dataset"`
	Count   int    `json:"count"`
}

// Summary is the derived, immutable aggregation of one run's log rows.
type Summary struct {
	Total            int            `json:"total"`
	ByDataset        []DatasetCount `json:"by_dataset"`
	MostCommonReason string         `json:"most_common_reason"`
	// MostRecent is nil when no row carries a parseable date.
	MostRecent *time.Time `json:"most_recent,omitempty"`
	// Recent holds the first five rows in ingestion order.
	Recent []LogRow `json:"recent"`
}
