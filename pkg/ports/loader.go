package ports

import "github.com/aretw0/arbor/pkg/domain"

// DialogCatalog resolves the dialog behind an entry point.
// Dialogs are loaded once at startup and shared read-only.
type DialogCatalog interface {
	Dialog(entry domain.EntryPoint) (*domain.Dialog, bool)
}
