package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appcatalog "github.com/eagraf/habitat-store/core/state/catalog"
	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/qri-io/jsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var (
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrAppNotFound    = errors.New("app not found in catalog")
)

// Catalog is a local list of apps that can be installed.
type Catalog struct {
	Apps []appcatalog.App `json:"apps" yaml:"apps"`
}

func (c *Catalog) Find(appID string) (*appcatalog.App, error) {
	for i := range c.Apps {
		if c.Apps[i].ID == appID {
			return &c.Apps[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAppNotFound, appID)
}

// Load reads a catalog from a .json, .yml or .yaml file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return ParseYAML(raw)
	default:
		return ParseJSON(raw)
	}
}

func ParseYAML(raw []byte) (*Catalog, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, err)
	}
	// Validation runs on JSON, so round trip the document through it.
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, err)
	}
	return ParseJSON(asJSON)
}

func ParseJSON(raw []byte) (*Catalog, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, err)
	}

	seen := make(map[string]bool)
	for _, app := range c.Apps {
		if err := library.ValidateAppID(app.ID); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
		if seen[app.ID] {
			return nil, fmt.Errorf("%w: duplicate app id %s", ErrInvalidCatalog, app.ID)
		}
		seen[app.ID] = true
		for _, version := range app.Versions {
			for _, variant := range version.Variants {
				if err := variant.Validate(); err != nil {
					return nil, fmt.Errorf("%w: %s %s: %w", ErrInvalidCatalog, app.ID, version.Number, err)
				}
			}
		}
	}
	return &c, nil
}

func validate(raw []byte) error {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(schemaJSON, rs); err != nil {
		return fmt.Errorf("invalid catalog schema: %s", err)
	}
	keyErrs, err := rs.ValidateBytes(context.Background(), raw)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, err)
	}
	if len(keyErrs) != 0 {
		msgs := make([]string, 0, len(keyErrs))
		for _, e := range keyErrs {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(msgs, "; "))
	}
	return nil
}
