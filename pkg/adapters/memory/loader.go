package memory

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// Catalog implements ports.DialogCatalog using an in-memory map.
type Catalog struct {
	dialogs map[domain.EntryPoint]*domain.Dialog
}

// NewCatalog creates a catalog from already built dialogs.
// Every dialog is validated; the first invalid one aborts construction.
func NewCatalog(dialogs map[domain.EntryPoint]*domain.Dialog) (*Catalog, error) {
	c := &Catalog{dialogs: make(map[domain.EntryPoint]*domain.Dialog, len(dialogs))}
	for entry, d := range dialogs {
		if d == nil {
			return nil, fmt.Errorf("dialog for %s is nil", entry)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("dialog for %s: %w", entry, err)
		}
		c.dialogs[entry] = d
	}
	return c, nil
}

// Dialog returns the dialog registered for the entry point.
func (c *Catalog) Dialog(entry domain.EntryPoint) (*domain.Dialog, bool) {
	d, ok := c.dialogs[entry]
	return d, ok
}

// Entries lists the registered entry points in declaration order.
func (c *Catalog) Entries() []domain.EntryPoint {
	var entries []domain.EntryPoint
	for _, e := range domain.DialogEntryPoints {
		if _, ok := c.dialogs[e]; ok {
			entries = append(entries, e)
		}
	}
	return entries
}
