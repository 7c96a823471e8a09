package crisis

import "fmt"

// Catalog is the read-only registry of crisis definitions.
type Catalog struct {
	defs []*Definition
	byID map[string]*Definition
}

// NewCatalog builds a catalog from definitions, keeping their order.
// Duplicate ids are a configuration error.
func NewCatalog(defs ...*Definition) (*Catalog, error) {
	c := &Catalog{
		defs: make([]*Definition, 0, len(defs)),
		byID: make(map[string]*Definition, len(defs)),
	}
	for _, d := range defs {
		if _, dup := c.byID[d.ID]; dup {
			return nil, &ConfigurationError{Subject: d.ID, Detail: fmt.Sprintf("duplicate crisis id %q", d.ID)}
		}
		c.byID[d.ID] = d
		c.defs = append(c.defs, d)
	}
	return c, nil
}

// Lookup finds a definition by id.
func (c *Catalog) Lookup(id string) (*Definition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// ByTriggerType returns the definitions of one trigger type in catalog order.
func (c *Catalog) ByTriggerType(t TriggerType) []*Definition {
	var out []*Definition
	for _, d := range c.defs {
		if d.TriggerType == t {
			out = append(out, d)
		}
	}
	return out
}

// All returns every definition in catalog order.
func (c *Catalog) All() []*Definition {
	out := make([]*Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// IDs returns every crisis id in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.defs))
	for i, d := range c.defs {
		ids[i] = d.ID
	}
	return ids
}

func (c *Catalog) Len() int {
	return len(c.defs)
}
