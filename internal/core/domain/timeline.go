// internal/core/domain/timeline.go
package domain

import (
	"sort"
	"time"
)

// EventSource identifies which record family produced a timeline event
type EventSource string

const (
	SourceInventory EventSource = "inventory"
	SourceInvoice   EventSource = "invoice"
	SourceSale      EventSource = "sale"
	SourceTest      EventSource = "test"
)

// TimelineEvent is one normalized entry in a device's history timeline.
type TimelineEvent struct {
	Source      EventSource    `json:"source"`
	Date        time.Time      `json:"date"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	RefID       string         `json:"ref_id,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// DeviceHistory is the full lifecycle answer for one IMEI: the raw matched
// records plus a merged timeline. Found is true if any source matched.
type DeviceHistory struct {
	IMEI     string            `json:"imei"`
	Found    bool              `json:"found"`
	Lot      *ProductLot       `json:"lot,omitempty"`
	Device   *Device           `json:"device,omitempty"`
	Invoices []SupplierInvoice `json:"invoices,omitempty"`
	Sales    []Sale            `json:"sales,omitempty"`
	Tests    []DeviceTest      `json:"tests,omitempty"`
	Timeline []TimelineEvent   `json:"timeline"`
}

// MergeTimeline orders events newest first. The sort is stable so events
// sharing a timestamp keep the order their sources were appended in.
func MergeTimeline(events []TimelineEvent) []TimelineEvent {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
	return events
}
