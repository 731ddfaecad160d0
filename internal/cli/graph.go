package cli

import (
	"fmt"

	"github.com/aretw0/arbor/internal/locale"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/adapters/file"
)

// Graph renders a dialog file as a Mermaid flowchart. Labels are localised
// when lang is set; otherwise the raw template keys are shown.
func Graph(path, localeFile, lang string) (string, error) {
	d, err := file.LoadFile(path)
	if err != nil {
		return "", err
	}
	var label graph.Labeler
	if lang != "" {
		cat, err := locale.Load(localeFile, lang)
		if err != nil {
			return "", fmt.Errorf("locale: %w", err)
		}
		label = cat.Text
	}
	return graph.GenerateMermaid(d, label, nil), nil
}
