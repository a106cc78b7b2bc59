// internal/core/domain/timeline_test.go
package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTimelineOrdersNewestFirst(t *testing.T) {
	d1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	events := []TimelineEvent{
		{Source: SourceInventory, Date: d1, Title: "Added to inventory"},
		{Source: SourceSale, Date: d3, Title: "Sold"},
		{Source: SourceTest, Date: d2, Title: "Diagnostic test"},
	}

	merged := MergeTimeline(events)

	require.Len(t, merged, 3)
	assert.Equal(t, SourceSale, merged[0].Source)
	assert.Equal(t, SourceTest, merged[1].Source)
	assert.Equal(t, SourceInventory, merged[2].Source)
}

func TestMergeTimelineStableOnEqualDates(t *testing.T) {
	d := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	events := []TimelineEvent{
		{Source: SourceInvoice, Date: d, Title: "first appended"},
		{Source: SourceTest, Date: d, Title: "second appended"},
	}

	merged := MergeTimeline(events)
	assert.Equal(t, "first appended", merged[0].Title)
	assert.Equal(t, "second appended", merged[1].Title)
}
