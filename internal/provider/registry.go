package provider

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// Registry holds the configured connectors. It is built once at startup and
// never mutated, so it needs no locking.
type Registry struct {
	connectors map[ConnectorKind]*Connector
	catalog    Catalog
}

// NewRegistry validates each connector against the catalogue.
func NewRegistry(catalog Catalog, connectors ...*Connector) (*Registry, error) {
	r := &Registry{connectors: make(map[ConnectorKind]*Connector, len(connectors)), catalog: catalog}
	for _, c := range connectors {
		if c == nil {
			continue
		}
		if _, ok := catalog.Lookup(c.Kind); !ok {
			return nil, fmt.Errorf("connector %s missing from catalog", c.Kind)
		}
		if _, dup := r.connectors[c.Kind]; dup {
			return nil, fmt.Errorf("connector %s registered twice", c.Kind)
		}
		if c.Converter == nil {
			return nil, fmt.Errorf("connector %s has no amount converter", c.Kind)
		}
		r.connectors[c.Kind] = c
		log.Info().
			Str("connector", string(c.Kind)).
			Str("base_url", c.BaseURL).
			Strs("flows", flowsToStrings(c.Flows())).
			Msg("registered connector")
	}
	return r, nil
}

// Get returns a connector by kind
func (r *Registry) Get(kind ConnectorKind) (*Connector, error) {
	c, ok := r.connectors[kind]
	if !ok {
		e := newError(ErrConnectorNotFound, "connector", nil)
		e.Message = fmt.Sprintf("connector %s not registered", kind)
		return nil, e
	}
	return c, nil
}

// Info returns the catalogue entry of a registered connector.
func (r *Registry) Info(kind ConnectorKind) (ConnectorInfo, bool) {
	if _, ok := r.connectors[kind]; !ok {
		return ConnectorInfo{}, false
	}
	return r.catalog.Lookup(kind)
}

// List returns registered connector kinds in name order.
func (r *Registry) List() []ConnectorKind {
	out := make([]ConnectorKind, 0, len(r.connectors))
	for k := range r.connectors {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func flowsToStrings(flows []Flow) []string {
	out := make([]string, len(flows))
	for i, f := range flows {
		out[i] = string(f)
	}
	return out
}
