package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
)

// Validate checks every dialog file of dir and that each entry point has a
// dialog. Problems are written to w; the returned error summarises them.
func Validate(dir string, w io.Writer) error {
	files, err := file.Files(dir)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range files {
		d, err := file.LoadFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(w, "✖ %s\n", filepath.Base(path))
			if details := domain.ValidationErrors(err); len(details) > 0 {
				for _, e := range details {
					fmt.Fprintf(w, "    %s\n", e)
				}
			} else {
				fmt.Fprintf(w, "    %s\n", err)
			}
			continue
		}
		fmt.Fprintf(w, "✔ %s (%d steps)\n", filepath.Base(path), d.StepCount())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d dialog files are invalid", failed, len(files))
	}

	if _, err := file.LoadDir(dir); err != nil {
		if errors.Is(err, domain.ErrUnknownDialog) {
			fmt.Fprintf(w, "✖ %s\n", err)
		}
		return err
	}
	return nil
}
