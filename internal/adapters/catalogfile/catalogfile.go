// Package catalogfile reads and writes recipe catalogs and resource snapshots
// as YAML documents.
package catalogfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

const maxSuggestions = 3

// LoadCatalogFile reads a catalog definition from path
func LoadCatalogFile(path string) (*crafting.CatalogDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	def, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// ParseCatalog decodes a catalog document. Unknown fields are rejected.
func ParseCatalog(data []byte) (*crafting.CatalogDefinition, error) {
	var doc catalogDoc
	if err := decodeStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid catalog document: %w", err)
	}
	return doc.toDefinition(), nil
}

// BuildCatalog builds def, attaching name suggestions to unknown-commodity errors
func BuildCatalog(def *crafting.CatalogDefinition) (*crafting.Catalog, error) {
	catalog, err := def.Build()
	if err == nil {
		return catalog, nil
	}

	// The index alone may still be valid even if a recipe references a bad name
	if index, idxErr := crafting.NewCommodityIndex(def.Items, def.Equipment); idxErr == nil {
		return nil, withSuggestions(err, index)
	}
	return nil, err
}

// EncodeCatalog renders def as a YAML document
func EncodeCatalog(def *crafting.CatalogDefinition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(catalogDocFromDefinition(def)); err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadSnapshotFile reads a snapshot from path and resolves it against index
func LoadSnapshotFile(path string, index *crafting.CommodityIndex) (*crafting.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	snap, err := ParseSnapshot(data, index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// ParseSnapshot decodes a snapshot document and resolves commodity names
func ParseSnapshot(data []byte, index *crafting.CommodityIndex) (*crafting.Snapshot, error) {
	var doc snapshotDoc
	if err := decodeStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid snapshot document: %w", err)
	}
	snap, err := doc.toDefinition().Resolve(index)
	if err != nil {
		return nil, withSuggestions(err, index)
	}
	return snap, nil
}

func decodeStrict(data []byte, out interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func withSuggestions(err error, index *crafting.CommodityIndex) error {
	var unknown *crafting.ErrUnknownCommodity
	if !errors.As(err, &unknown) {
		return err
	}
	return &crafting.ErrUnknownCommodity{
		Name:        unknown.Name,
		Suggestions: Suggest(index.Names(), unknown.Name, maxSuggestions),
	}
}
