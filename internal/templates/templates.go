// Package templates holds the per-bank template registry: the ordered bank
// detection rules and the bank-specific patterns tried ahead of the built-in
// extraction tables.
package templates

import (
	"regexp"
	"strings"

	"fjacquet/sms-ledger/internal/extractor"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
)

// Template describes one bank. Keywords drive detection and Confidence is the
// bank confidence reported when one of them matches. The patterns are
// optional; each needs one capture group.
type Template struct {
	Bank            models.Bank `yaml:"bank"`
	Keywords        []string    `yaml:"keywords"`
	Confidence      float64     `yaml:"confidence"`
	AmountPattern   string      `yaml:"amount_pattern,omitempty"`
	MerchantPattern string      `yaml:"merchant_pattern,omitempty"`
	DatePattern     string      `yaml:"date_pattern,omitempty"`
	Active          bool        `yaml:"active"`
}

type compiled struct {
	amount   *regexp.Regexp
	merchant *regexp.Regexp
	date     *regexp.Regexp
}

// Registry is an immutable, validated set of templates.
type Registry struct {
	templates []Template
	rules     []extractor.BankRule
	patterns  map[models.Bank]compiled
}

// New validates templates and builds a registry. Their order is the bank
// detection priority.
func New(templates []Template) (*Registry, error) {
	r := &Registry{patterns: make(map[models.Bank]compiled)}
	seen := make(map[models.Bank]bool)

	for _, t := range templates {
		t.Keywords = normaliseKeywords(t)
		if err := validate(t, seen); err != nil {
			return nil, err
		}
		seen[t.Bank] = true

		c, err := compile(t)
		if err != nil {
			return nil, err
		}
		r.templates = append(r.templates, t)
		if !t.Active {
			continue
		}
		r.patterns[t.Bank] = c
		r.rules = append(r.rules, extractor.BankRule{
			Bank:       t.Bank,
			Keywords:   t.Keywords,
			Confidence: t.Confidence,
		})
	}
	return r, nil
}

// MustNew is New for tables known to be valid; it panics otherwise.
func MustNew(templates []Template) *Registry {
	r, err := New(templates)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns a registry built from Defaults.
func Default() *Registry {
	return MustNew(Defaults())
}

// Templates returns a copy of every template, active or not, in priority order.
func (r *Registry) Templates() []Template {
	out := make([]Template, len(r.templates))
	for i, t := range r.templates {
		t.Keywords = append([]string(nil), t.Keywords...)
		out[i] = t
	}
	return out
}

// BankRules returns the detection rules of the active templates.
func (r *Registry) BankRules() []extractor.BankRule {
	return append([]extractor.BankRule(nil), r.rules...)
}

// HasPatterns reports whether bank has an active template with at least one
// pattern.
func (r *Registry) HasPatterns(bank models.Bank) bool {
	c, ok := r.patterns[bank]
	return ok && (c.amount != nil || c.merchant != nil || c.date != nil)
}

// TablesFor returns base with bank's template patterns placed ahead of the
// built-in ones. Template amount matches score the specific tier. base is not
// modified.
func (r *Registry) TablesFor(bank models.Bank, base extractor.Tables) extractor.Tables {
	c, ok := r.patterns[bank]
	if !ok {
		return base
	}
	out := base
	if c.amount != nil {
		out.Amount = append([]extractor.AmountRule{{Pattern: c.amount, Confidence: extractor.AmountSpecificConfidence}}, base.Amount...)
	}
	if c.merchant != nil {
		out.Merchant = append([]*regexp.Regexp{c.merchant}, base.Merchant...)
	}
	if c.date != nil {
		out.Date = append([]*regexp.Regexp{c.date}, base.Date...)
	}
	return out
}

func normaliseKeywords(t Template) []string {
	var out []string
	for _, k := range t.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 && t.Bank != models.BankNone {
		out = []string{strings.ToLower(string(t.Bank))}
	}
	return out
}

func validate(t Template, seen map[models.Bank]bool) error {
	bank := string(t.Bank)
	switch {
	case t.Bank == models.BankNone:
		return &parsererror.TemplateError{Bank: "<empty>", Field: "bank", Reason: "bank name is required"}
	case !t.Bank.IsValid() || t.Bank == models.BankUnknown:
		return &parsererror.TemplateError{Bank: bank, Field: "bank", Reason: "not a supported bank"}
	case seen[t.Bank]:
		return &parsererror.TemplateError{Bank: bank, Field: "bank", Reason: "duplicate template"}
	case t.Confidence <= 0 || t.Confidence > 1:
		return &parsererror.TemplateError{Bank: bank, Field: "confidence", Reason: "must be in (0, 1]"}
	}
	return nil
}

func compile(t Template) (compiled, error) {
	var c compiled
	var err error
	// Amounts and dates are matched case-insensitively like the built-in
	// tables; merchant names rely on capitals.
	if c.amount, err = compilePattern(t, "amount_pattern", t.AmountPattern, true); err != nil {
		return c, err
	}
	if c.merchant, err = compilePattern(t, "merchant_pattern", t.MerchantPattern, false); err != nil {
		return c, err
	}
	if c.date, err = compilePattern(t, "date_pattern", t.DatePattern, true); err != nil {
		return c, err
	}
	return c, nil
}

func compilePattern(t Template, field, pattern string, ignoreCase bool) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	src := pattern
	if ignoreCase {
		src = "(?i)" + pattern
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, &parsererror.TemplateError{Bank: string(t.Bank), Field: field, Reason: "does not compile", Err: err}
	}
	if re.NumSubexp() < 1 {
		return nil, &parsererror.TemplateError{Bank: string(t.Bank), Field: field, Reason: "needs a capture group"}
	}
	return re, nil
}
