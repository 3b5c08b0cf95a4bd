// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package topology

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_topology.yaml
var defaultTable []byte

// DefaultSource names the compiled-in table in error messages.
const DefaultSource = "<embedded>"

// cellEntry is the on-disk shape of one cell. Pointers distinguish a
// missing field from a zero value.
type cellEntry struct {
	CellID *int     `yaml:"cell_id"`
	Region *string  `yaml:"region"`
	City   *string  `yaml:"city"`
	Code   *string  `yaml:"code"`
	CM     string   `yaml:"cm"`
	Caches []string `yaml:"caches"`
}

type table struct {
	Cells []cellEntry `yaml:"cells"`
}

// Load builds a Registry from the YAML file at path, or from the embedded
// table when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(bytes.NewReader(defaultTable), DefaultSource)
	}

	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, &ConfigurationError{Source: path, Entry: -1, Reason: err.Error()}
	}
	defer func() { _ = f.Close() }()

	return Parse(f, path)
}

// Parse decodes a topology table. Unknown fields, missing required fields
// and duplicate cell ids are all configuration errors.
func Parse(r io.Reader, source string) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t table
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigurationError{Source: source, Entry: -1, Reason: "empty topology table"}
		}
		return nil, &ConfigurationError{Source: source, Entry: -1, Reason: fmt.Sprintf("decode: %v", err)}
	}

	nodes := make([]Node, 0, len(t.Cells))
	for i, c := range t.Cells {
		n, err := c.toNode(source, i)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return newRegistry(nodes, source)
}

func (c cellEntry) toNode(source string, i int) (Node, error) {
	missing := func(field string) error {
		return &ConfigurationError{Source: source, Entry: i, Field: field, Reason: "required field missing"}
	}
	switch {
	case c.CellID == nil:
		return Node{}, missing("cell_id")
	case c.Region == nil || *c.Region == "":
		return Node{}, missing("region")
	case c.City == nil || *c.City == "":
		return Node{}, missing("city")
	case c.Code == nil:
		return Node{}, missing("code")
	}

	caches := make([]string, 0, len(c.Caches))
	for _, name := range c.Caches {
		if name == "" {
			return Node{}, &ConfigurationError{Source: source, Entry: i, Field: "caches", Reason: "empty cache name"}
		}
		caches = append(caches, name)
	}

	return Node{
		CellID:         *c.CellID,
		ContentMachine: c.CM,
		Caches:         caches,
		Region:         CanonicalRegion(*c.Region),
		City:           *c.City,
		CountryCode:    *c.Code,
	}, nil
}
