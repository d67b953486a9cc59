//go:build gnuplot

package figure

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestLookupGnuplot(t *testing.T) {
	if open, err := LookupBackend("gnuplot"); err != nil || open == nil {
		t.Errorf("LookupBackend(gnuplot): %v", err)
	}
}

func TestGlotPlotsTwoFigures(t *testing.T) {
	if _, err := exec.LookPath("gnuplot"); err != nil {
		t.Skip("gnuplot not on PATH")
	}
	dir := t.TempDir()

	err := With(OpenGnuplot, func(s *Session) error {
		opts := DefaultOptions()
		opts.Directory = dir
		opts.Formats = []string{"svg"}
		for _, name := range []string{"first", "second"} {
			opts.Filename = name
			if _, err := s.Plot(flat("0 deg", "5 deg", "5 deg"), opts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}

	for _, name := range []string{"first.svg", "second.svg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}
