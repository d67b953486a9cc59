//go:build !gnuplot

package figure

import (
	"errors"
	"testing"
)

func TestGnuplotNotLinked(t *testing.T) {
	if _, err := LookupBackend("gnuplot"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend without -tags gnuplot, got %v", err)
	}
}
