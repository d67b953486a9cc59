//go:build gnuplot

package figure

import (
	"github.com/Arafatk/glot"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// glot panics at package init when gnuplot is not on PATH, so this backend
// is only linked into builds with -tags gnuplot.
func init() {
	backends["gnuplot"] = OpenGnuplot
}

// OpenGnuplot starts a gnuplot process through glot.
func OpenGnuplot() (Backend, error) {
	dimensions := 2
	persist := false
	debug := logrus.IsLevelEnabled(logrus.TraceLevel)

	plot, err := glot.NewPlot(dimensions, persist, debug)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start gnuplot")
	}

	g := newGnuplot(plot)
	if err := g.cmd("set terminal unknown"); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}
