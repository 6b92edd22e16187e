// Package dataset provides the word lists used to synthesize string values.
//
// The lists are content, not logic: the built-in English lists can be
// replaced with a JSON file so that generated names, streets and cities can
// be localized without touching the generator.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
)

// Dataset holds every word list the generator draws from.
type Dataset struct {
	FirstNames    []string `json:"firstNames"`
	LastNames     []string `json:"lastNames"`
	Titles        []string `json:"titles"`
	Descriptions  []string `json:"descriptions"`
	Statuses      []string `json:"statuses"`
	Categories    []string `json:"categories"`
	Companies     []string `json:"companies"`
	Cities        []string `json:"cities"`
	Countries     []string `json:"countries"`
	Streets       []string `json:"streets"`
	AddressCities []string `json:"addressCities"`
	EmailDomains  []string `json:"emailDomains"`
	URLPaths      []string `json:"urlPaths"`
}

// Default returns the built-in English word lists.
func Default() *Dataset {
	return &Dataset{
		FirstNames: []string{"John", "Jane", "Michael", "Sarah", "David", "Emma", "James", "Olivia"},
		LastNames:  []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller"},
		Titles:     []string{"Important Update", "Meeting Notes", "Project Review", "Team Discussion", "Weekly Report"},
		Descriptions: []string{
			"This is a sample description",
			"Important information here",
			"Please review this carefully",
			"Updated content available",
			"Action required",
		},
		Statuses:      []string{"Active", "Pending", "Completed", "In Progress", "Cancelled"},
		Categories:    []string{"Type A", "Type B", "Category 1", "Category 2", "Standard"},
		Companies:     []string{"Acme Corp", "Globex", "Initech", "Umbrella Inc", "Stark Industries", "Wayne Enterprises"},
		Cities:        []string{"Seattle", "Boston", "Denver", "Austin", "Portland", "Atlanta"},
		Countries:     []string{"United States", "Canada", "United Kingdom", "Germany", "France", "Japan", "Australia"},
		Streets:       []string{"Main St", "Oak Ave", "Elm St", "Maple Dr", "Pine Rd", "Cedar Ln"},
		AddressCities: []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"},
		EmailDomains:  []string{"gmail.com", "yahoo.com", "outlook.com", "company.com", "example.com"},
		URLPaths:      []string{"products", "services", "about", "contact", "blog"},
	}
}

// Load reads a dataset from a JSON file. Lists missing from the file keep
// their built-in values; a list present but empty is an error.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON dataset on top of the defaults.
func Parse(data []byte) (*Dataset, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	ds := Default()
	if err := json.Unmarshal(data, ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	for name, list := range ds.lists() {
		if _, present := raw[name]; present && len(*list) == 0 {
			return nil, fmt.Errorf("dataset list %q is empty", name)
		}
	}
	return ds, nil
}

// Validate checks that every list has at least one entry.
func (d *Dataset) Validate() error {
	for name, list := range d.lists() {
		if len(*list) == 0 {
			return fmt.Errorf("dataset list %q is empty", name)
		}
	}
	return nil
}

// lists returns pointers to every list keyed by JSON name.
func (d *Dataset) lists() map[string]*[]string {
	return map[string]*[]string{
		"firstNames":    &d.FirstNames,
		"lastNames":     &d.LastNames,
		"titles":        &d.Titles,
		"descriptions":  &d.Descriptions,
		"statuses":      &d.Statuses,
		"categories":    &d.Categories,
		"companies":     &d.Companies,
		"cities":        &d.Cities,
		"countries":     &d.Countries,
		"streets":       &d.Streets,
		"addressCities": &d.AddressCities,
		"emailDomains":  &d.EmailDomains,
		"urlPaths":      &d.URLPaths,
	}
}
