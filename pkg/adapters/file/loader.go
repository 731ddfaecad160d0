// Package file loads dialog definitions from JSON or YAML files.
//
// The on-disk layout mirrors the dialog wire format:
//
//	{
//	  "id": 1,
//	  "trace": true,
//	  "sequences": [{"id": 0, "items_ids": [10], "next_sequence_id": null}],
//	  "items":     [{"id": 10, "text": "poll_q1", "type": 0, "options_ids": [1, 2]}],
//	  "options":   [{"id": 1, "text": "yes", "sequence_id": null, "row": 0}]
//	}
//
// A directory catalog names each file after the entry point it serves
// (service.json, profile.yaml, ...).
package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format selects the decoder of a dialog document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// dialogDocument is the serialised shape of a dialog.
type dialogDocument struct {
	ID        int               `json:"id" yaml:"id"`
	Trace     bool              `json:"trace" yaml:"trace"`
	Sequences []domain.Sequence `json:"sequences" yaml:"sequences"`
	Items     []domain.Item     `json:"items" yaml:"items"`
	Options   []domain.Option   `json:"options" yaml:"options"`
}

// FormatFor guesses the format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Decode parses and validates one dialog document.
func Decode(data []byte, format Format) (*domain.Dialog, error) {
	var doc dialogDocument
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode json dialog: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml dialog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dialog format %q", format)
	}

	d, err := doc.build()
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (doc *dialogDocument) build() (*domain.Dialog, error) {
	d := &domain.Dialog{
		ID:        doc.ID,
		Trace:     doc.Trace,
		Sequences: make(map[int]*domain.Sequence, len(doc.Sequences)),
		Items:     make(map[int]*domain.Item, len(doc.Items)),
		Options:   make(map[int]*domain.Option, len(doc.Options)),
	}

	for i := range doc.Sequences {
		s := doc.Sequences[i]
		if _, dup := d.Sequences[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate sequence id %d", domain.ErrInvalidDialog, s.ID)
		}
		d.Sequences[s.ID] = &s
	}
	for i := range doc.Items {
		it := doc.Items[i]
		if _, dup := d.Items[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %d", domain.ErrInvalidDialog, it.ID)
		}
		d.Items[it.ID] = &it
	}
	for i := range doc.Options {
		o := doc.Options[i]
		if _, dup := d.Options[o.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate option id %d", domain.ErrInvalidDialog, o.ID)
		}
		d.Options[o.ID] = &o
	}
	return d, nil
}

// LoadFile reads one dialog file.
func LoadFile(path string) (*domain.Dialog, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, fmt.Errorf("unsupported dialog file %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialog file: %w", err)
	}
	d, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Files lists the dialog files of a directory in name order.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialogs directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatFor(e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir builds a catalog from a directory. Files whose base name is not an
// entry point token are ignored. Every dialog entry point must be present.
func LoadDir(dir string) (*memory.Catalog, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}

	dialogs := make(map[domain.EntryPoint]*domain.Dialog)
	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		entry, ok := domain.ParseEntryPoint(name)
		if !ok || !entry.HasDialog() {
			continue
		}
		if _, dup := dialogs[entry]; dup {
			return nil, fmt.Errorf("entry point %s is defined twice in %s", entry, dir)
		}
		d, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		dialogs[entry] = d
	}

	for _, entry := range domain.DialogEntryPoints {
		if _, ok := dialogs[entry]; !ok {
			return nil, fmt.Errorf("%w: no dialog for %s in %s", domain.ErrUnknownDialog, entry, dir)
		}
	}
	return memory.NewCatalog(dialogs)
}
