package templates

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fjacquet/sms-ledger/internal/models"
)

// file is the on-disk layout: a top-level "templates" list.
type file struct {
	Templates []fileTemplate `yaml:"templates"`
}

// fileTemplate mirrors Template with an optional active flag, so rows that
// omit it stay active.
type fileTemplate struct {
	Bank            models.Bank `yaml:"bank"`
	Keywords        []string    `yaml:"keywords,omitempty"`
	Confidence      float64     `yaml:"confidence"`
	AmountPattern   string      `yaml:"amount_pattern,omitempty"`
	MerchantPattern string      `yaml:"merchant_pattern,omitempty"`
	DatePattern     string      `yaml:"date_pattern,omitempty"`
	Active          *bool       `yaml:"active,omitempty"`
}

// FindFile looks for filename as given, under ./config and under
// ~/.config/sms-ledger, in that order.
func FindFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}

	locations := []string{filename, filepath.Join("config", filename)}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "sms-ledger", filename))
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", fmt.Errorf("templates file %s: %w", filename, os.ErrNotExist)
}

// LoadFile reads and validates a registry from a YAML file located with
// FindFile.
func LoadFile(filename string) (*Registry, error) {
	path, err := FindFile(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening templates file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("error loading templates from %s: %w", path, err)
	}
	return r, nil
}

// Load reads and validates a registry from YAML.
func Load(r io.Reader) (*Registry, error) {
	var doc file
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}
	if len(doc.Templates) == 0 {
		return nil, fmt.Errorf("error parsing templates: no templates defined")
	}

	templates := make([]Template, 0, len(doc.Templates))
	for _, ft := range doc.Templates {
		active := ft.Active == nil || *ft.Active
		templates = append(templates, Template{
			Bank:            ft.Bank,
			Keywords:        ft.Keywords,
			Confidence:      ft.Confidence,
			AmountPattern:   ft.AmountPattern,
			MerchantPattern: ft.MerchantPattern,
			DatePattern:     ft.DatePattern,
			Active:          active,
		})
	}
	return New(templates)
}

// Dump writes templates in the layout Load reads.
func Dump(w io.Writer, templates []Template) error {
	doc := file{Templates: make([]fileTemplate, 0, len(templates))}
	for _, t := range templates {
		active := t.Active
		doc.Templates = append(doc.Templates, fileTemplate{
			Bank:            t.Bank,
			Keywords:        t.Keywords,
			Confidence:      t.Confidence,
			AmountPattern:   t.AmountPattern,
			MerchantPattern: t.MerchantPattern,
			DatePattern:     t.DatePattern,
			Active:          &active,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("error writing templates: %w", err)
	}
	return enc.Close()
}
