package payroll

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v2"

	"ghpayroll/internal/domain/tax"
)

// RateResolver finds a rate table by name. An empty name means the default.
type RateResolver interface {
	Lookup(name string) (RateConfig, error)
}

// Registry is an immutable set of validated rate tables.
type Registry struct {
	tables      map[string]RateConfig
	defaultName string
}

func NewRegistry(defaultName string, configs ...RateConfig) (*Registry, error) {
	r := &Registry{tables: make(map[string]RateConfig, len(configs)), defaultName: defaultName}
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		r.tables[cfg.Name] = cfg.Clone()
	}
	if _, ok := r.tables[defaultName]; !ok {
		return nil, fmt.Errorf("default %q: %w", defaultName, ErrUnknownRateTable)
	}
	return r, nil
}

// DefaultRegistry holds the built-in Ghana rate tables.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultRateTable, GhanaMonthlySimplified(), GhanaAnnualTwoTier())
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Lookup(name string) (RateConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = r.defaultName
	}
	cfg, ok := r.tables[name]
	if !ok {
		return RateConfig{}, fmt.Errorf("%q: %w", name, ErrUnknownRateTable)
	}
	return cfg.Clone(), nil
}

func (r *Registry) DefaultName() string {
	return r.defaultName
}

func (r *Registry) Names() []string {
	names := lo.Keys(r.tables)
	sort.Strings(names)
	return names
}

func (r *Registry) All() []RateConfig {
	return lo.Map(r.Names(), func(name string, _ int) RateConfig { return r.tables[name].Clone() })
}

type rateFile struct {
	Default string      `yaml:"default"`
	Tables  []rateTable `yaml:"tables"`
}

type rateTable struct {
	Name          string          `yaml:"name"`
	Description   string          `yaml:"description"`
	Periods       int             `yaml:"periods"`
	SSNITEmployee []float64       `yaml:"ssnitEmployee"`
	NHISEmployee  float64         `yaml:"nhisEmployee"`
	SSNITEmployer []float64       `yaml:"ssnitEmployer"`
	NHISEmployer  float64         `yaml:"nhisEmployer"`
	Tiers         []rateTier      `yaml:"tiers"`
	Thresholds    []rateThreshold `yaml:"thresholds"`
}

// rateTier omits width for the catch-all tier.
type rateTier struct {
	Width *float64 `yaml:"width"`
	Rate  float64  `yaml:"rate"`
}

// rateThreshold omits upTo for the catch-all bracket.
type rateThreshold struct {
	UpTo *float64 `yaml:"upTo"`
	Rate float64  `yaml:"rate"`
}

// LoadRegistry reads YAML rate tables from path and merges them over the
// built-in tables. A table with a built-in name replaces it. The file's
// default wins over defaultName when both are set.
func LoadRegistry(path, defaultName string) (*Registry, error) {
	tables := map[string]RateConfig{
		RateTableMonthlySimplified: GhanaMonthlySimplified(),
		RateTableAnnualTwoTier:     GhanaAnnualTwoTier(),
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rate tables: %w", err)
		}
		parsed, fileDefault, err := ParseRateTables(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, cfg := range parsed {
			tables[cfg.Name] = cfg
		}
		if fileDefault != "" {
			defaultName = fileDefault
		}
	}
	if defaultName == "" {
		defaultName = DefaultRateTable
	}
	return NewRegistry(defaultName, lo.Values(tables)...)
}

// ParseRateTables decodes and validates a YAML rate table document.
func ParseRateTables(raw []byte) ([]RateConfig, string, error) {
	var file rateFile
	if err := yaml.UnmarshalStrict(raw, &file); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidRates, err)
	}
	out := make([]RateConfig, 0, len(file.Tables))
	seen := map[string]bool{}
	for i, table := range file.Tables {
		cfg, err := table.toConfig()
		if err != nil {
			return nil, "", fmt.Errorf("table %d: %w", i, err)
		}
		if seen[cfg.Name] {
			return nil, "", fmt.Errorf("%w: duplicate table %q", ErrInvalidRates, cfg.Name)
		}
		seen[cfg.Name] = true
		out = append(out, cfg)
	}
	return out, strings.TrimSpace(file.Default), nil
}

func (t rateTable) toConfig() (RateConfig, error) {
	name := strings.TrimSpace(t.Name)
	var tiers []tax.Tier
	switch {
	case len(t.Tiers) > 0 && len(t.Thresholds) > 0:
		return RateConfig{}, fmt.Errorf("%w: %s: use tiers or thresholds, not both", ErrInvalidRates, name)
	case len(t.Thresholds) > 0:
		thresholds := lo.Map(t.Thresholds, func(th rateThreshold, _ int) tax.Threshold {
			if th.UpTo == nil {
				return tax.Threshold{UpTo: tax.Unbounded, Rate: th.Rate}
			}
			return tax.Threshold{UpTo: *th.UpTo, Rate: th.Rate}
		})
		converted, err := tax.FromThresholds(thresholds)
		if err != nil {
			return RateConfig{}, fmt.Errorf("%w: %s: %w", ErrInvalidRates, name, err)
		}
		tiers = converted
	default:
		tiers = lo.Map(t.Tiers, func(tier rateTier, _ int) tax.Tier {
			if tier.Width == nil {
				return tax.Tier{Width: tax.Unbounded, Rate: tier.Rate}
			}
			return tax.Tier{Width: *tier.Width, Rate: tier.Rate}
		})
	}

	schedule, err := tax.NewSchedule(name, t.Periods, tiers)
	if err != nil {
		return RateConfig{}, fmt.Errorf("%w: %w", ErrInvalidRates, err)
	}
	cfg := RateConfig{
		Name:          name,
		Description:   t.Description,
		SSNITEmployee: t.SSNITEmployee,
		NHISEmployee:  t.NHISEmployee,
		SSNITEmployer: t.SSNITEmployer,
		NHISEmployer:  t.NHISEmployer,
		Schedule:      schedule,
	}
	if err := cfg.Validate(); err != nil {
		return RateConfig{}, err
	}
	return cfg, nil
}
