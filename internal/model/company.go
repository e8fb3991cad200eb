// Package model holds the transient values passed between search, fetch,
// scoring and the fallback pipeline for a single company lookup.
package model

import "strings"

// Company identifies the organisation whose official website is being looked up.
// Name is required; Address and Description are optional hints.
type Company struct {
	Name        string `json:"name" yaml:"name"`
	Address     string `json:"address,omitempty" yaml:"address,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// HasAddress reports whether a non-blank address was supplied.
func (c Company) HasAddress() bool {
	return strings.TrimSpace(c.Address) != ""
}

// HasDescription reports whether a non-blank description was supplied.
func (c Company) HasDescription() bool {
	return strings.TrimSpace(c.Description) != ""
}
