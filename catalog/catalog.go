// Package catalog is the data-driven registry of models the client can
// request. Each entry pairs a model identifier with the optional source
// gateway serving it; that pair is all the route selector needs. The set
// of models is open: entries are registered at startup, typically from a
// JSON catalog fetched or shipped with the application, and are read-only
// afterwards.
package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/alphadose/haxmap"
	json "github.com/goccy/go-json"
)

// Ref identifies a requestable model. SourceGateway is an optional
// explicit tag naming the upstream provider, used to disambiguate routing
// when the model identifier alone is insufficient.
type Ref struct {
	ID            string `json:"id"`
	SourceGateway string `json:"source_gateway,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
}

// Catalog is a concurrency-safe model registry keyed case-insensitively
// by model id.
type Catalog struct {
	refs *haxmap.Map[string, Ref]
}

func New() *Catalog {
	return &Catalog{
		refs: haxmap.New[string, Ref](),
	}
}

// Register adds or replaces an entry.
func (c *Catalog) Register(ref Ref) {
	c.refs.Set(strings.ToLower(ref.ID), ref)
}

// Lookup resolves a model id, ignoring case.
func (c *Catalog) Lookup(modelID string) (Ref, bool) {
	return c.refs.Get(strings.ToLower(modelID))
}

// MustLookup resolves a model id or panics. Intended for wiring code
// where a missing entry is a programming error.
func (c *Catalog) MustLookup(modelID string) Ref {
	ref, ok := c.Lookup(modelID)
	if !ok {
		panic(fmt.Sprintf("model %q is not in the catalog", modelID))
	}
	return ref
}

// GetOrCompute resolves a model id, registering the entry built by
// compute when the id is not yet known. Useful when an id arrives from
// user input that the shipped catalog does not list.
func (c *Catalog) GetOrCompute(modelID string, compute func() Ref) Ref {
	ref, _ := c.refs.GetOrCompute(strings.ToLower(modelID), compute)
	return ref
}

// Len returns the number of registered models.
func (c *Catalog) Len() int {
	return int(c.refs.Len())
}

// Load registers every entry of a JSON array of refs, as served by the
// backend's model listing.
func (c *Catalog) Load(r io.Reader) error {
	var refs []Ref
	if err := json.NewDecoder(r).Decode(&refs); err != nil {
		return fmt.Errorf("failed to decode model catalog: %w", err)
	}

	for _, ref := range refs {
		if ref.ID == "" {
			return fmt.Errorf("model catalog entry without id")
		}
		c.Register(ref)
	}
	return nil
}
