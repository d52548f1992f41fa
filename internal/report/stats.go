// Package report computes and renders spending statistics over the ledger.
package report

import (
	"encoding/xml"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/sms-ledger/internal/dateutils"
	"fjacquet/sms-ledger/internal/models"
)

const (
	// StatsLimit caps the number of most recent ledger rows considered.
	StatsLimit = 1000
	// RecentDays is the length of the recent-activity window.
	RecentDays = 7
)

// SourceCount is one entry of the source distribution.
type SourceCount struct {
	Source string `json:"source" xml:"name,attr"`
	Count  int    `json:"count" xml:"count,attr"`
}

// Stats summarises a user's ledger.
type Stats struct {
	XMLName            xml.Name        `json:"-" xml:"stats"`
	TotalTransactions  int             `json:"total_transactions" xml:"total_transactions"`
	TotalAmount        decimal.Decimal `json:"total_amount" xml:"total_amount"`
	AverageAmount      decimal.Decimal `json:"average_amount" xml:"average_amount"`
	SourceDistribution map[string]int  `json:"source_distribution" xml:"-"`
	Sources            []SourceCount   `json:"-" xml:"sources>source"`
	RecentCount        int             `json:"recent_7_days" xml:"recent_7_days"`
	RecentAmount       decimal.Decimal `json:"recent_amount" xml:"recent_amount"`
}

// Empty reports whether the stats cover no transactions.
func (s Stats) Empty() bool {
	return s.TotalTransactions == 0
}

// ComputeStats summarises entries. A row is recent when its date falls after
// today minus RecentDays, so today and the six days before it count.
// The average is rounded to two decimal places.
func ComputeStats(entries []models.LedgerEntry, today time.Time) Stats {
	stats := Stats{
		TotalAmount:        decimal.Zero,
		AverageAmount:      decimal.Zero,
		SourceDistribution: map[string]int{},
		RecentAmount:       decimal.Zero,
	}
	if len(entries) == 0 {
		return stats
	}

	cutoff := dateutils.DateOf(today).AddDate(0, 0, -RecentDays)
	for _, e := range entries {
		stats.TotalTransactions++
		stats.TotalAmount = stats.TotalAmount.Add(e.Amount)
		stats.SourceDistribution[e.Source]++
		if dateutils.DateOf(e.Date).After(cutoff) {
			stats.RecentCount++
			stats.RecentAmount = stats.RecentAmount.Add(e.Amount)
		}
	}
	stats.AverageAmount = stats.TotalAmount.
		Div(decimal.NewFromInt(int64(stats.TotalTransactions))).
		Round(2)

	for source, count := range stats.SourceDistribution {
		stats.Sources = append(stats.Sources, SourceCount{Source: source, Count: count})
	}
	sort.Slice(stats.Sources, func(i, j int) bool {
		return stats.Sources[i].Source < stats.Sources[j].Source
	})
	return stats
}

// GroupBySource splits entries by their source, keeping the input order
// within each group.
func GroupBySource(entries []models.LedgerEntry) map[string][]models.LedgerEntry {
	groups := make(map[string][]models.LedgerEntry)
	for _, e := range entries {
		groups[e.Source] = append(groups[e.Source], e)
	}
	return groups
}
