package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"fjacquet/sms-ledger/internal/currencyutils"
	"fjacquet/sms-ledger/internal/logging"
)

// ReportGenerator renders Stats in various formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &ReportGenerator{
		logger: logger.WithField(logging.FieldComponent, "ReportGenerator"),
	}
}

// GenerateReport renders stats as json, xml or text.
func (g *ReportGenerator) GenerateReport(stats Stats, format string) ([]byte, error) {
	switch format {
	case "json":
		return g.generateJSONReport(stats)
	case "xml":
		return g.generateXMLReport(stats)
	case "text":
		return g.generateTextReport(stats), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(stats Stats) ([]byte, error) {
	jsonReport, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return jsonReport, nil
}

func (g *ReportGenerator) generateXMLReport(stats Stats) ([]byte, error) {
	xmlReport, err := xml.MarshalIndent(stats, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal XML report")
		return nil, fmt.Errorf("failed to marshal XML report: %w", err)
	}
	return []byte(xml.Header + string(xmlReport)), nil
}

func (g *ReportGenerator) generateTextReport(stats Stats) []byte {
	if stats.Empty() {
		return []byte("No transactions found\n")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Transactions:   %d\n", stats.TotalTransactions)
	fmt.Fprintf(&b, "Total amount:   %s\n", currencyutils.FormatAmount(stats.TotalAmount, currencyutils.RupeeSymbol))
	fmt.Fprintf(&b, "Average amount: %s\n", currencyutils.FormatAmount(stats.AverageAmount, currencyutils.RupeeSymbol))
	fmt.Fprintf(&b, "Last %d days:    %d (%s)\n", RecentDays, stats.RecentCount,
		currencyutils.FormatAmount(stats.RecentAmount, currencyutils.RupeeSymbol))
	b.WriteString("By source:\n")
	for _, s := range stats.Sources {
		fmt.Fprintf(&b, "  %-14s %d\n", s.Source, s.Count)
	}
	return []byte(b.String())
}
