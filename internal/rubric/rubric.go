// Package rubric holds the versioned scoring categories and their weights.
package rubric

import (
	"errors"
	"fmt"
	"strings"
)

const totalWeight = 100

type Category struct {
	Name   string
	Weight float64
}

// Catalog is read-only after New returns.
type Catalog struct {
	version    string
	categories []Category
	weights    map[string]float64
}

// New validates the categories: unique non-empty names, positive weights summing to 100.
func New(version string, categories []Category) (*Catalog, error) {
	if strings.TrimSpace(version) == "" {
		return nil, errors.New("rubric version is required")
	}
	if len(categories) == 0 {
		return nil, errors.New("rubric must have at least one category")
	}

	weights := make(map[string]float64, len(categories))
	sum := 0.0
	for i, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category %d has no name", i)
		}
		if _, ok := weights[c.Name]; ok {
			return nil, fmt.Errorf("duplicate category %q", c.Name)
		}
		if c.Weight <= 0 {
			return nil, fmt.Errorf("category %q: weight must be positive, got %v", c.Name, c.Weight)
		}
		weights[c.Name] = c.Weight
		sum += c.Weight
	}

	if sum != totalWeight {
		return nil, fmt.Errorf("rubric %s: weights sum to %v, want %d", version, sum, totalWeight)
	}

	return &Catalog{
		version:    version,
		categories: append([]Category(nil), categories...),
		weights:    weights,
	}, nil
}

// Default returns rubric v1.
func Default() *Catalog {
	catalog, err := New("v1", []Category{
		{Name: "Professional Presence", Weight: 5},
		{Name: "Experience & Seniority", Weight: 20},
		{Name: "Impact & Results", Weight: 10},
		{Name: "Skills Credibility & Domain Knowledge", Weight: 25},
		{Name: "Tools & Technology", Weight: 20},
		{Name: "Projects & Ownership", Weight: 15},
		{Name: "Resume Quality", Weight: 5},
	})
	if err != nil {
		panic(err)
	}
	return catalog
}

func (c *Catalog) Version() string { return c.version }

func (c *Catalog) Len() int { return len(c.categories) }

// Names returns category names in rubric order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.categories))
	for _, category := range c.categories {
		names = append(names, category.Name)
	}
	return names
}

func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

func (c *Catalog) Weight(name string) (float64, bool) {
	w, ok := c.weights[name]
	return w, ok
}
