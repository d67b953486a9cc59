package batch

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/HamletTheHamster/fftplot/internal/figure"
	"github.com/HamletTheHamster/fftplot/internal/loader"
	"github.com/HamletTheHamster/fftplot/internal/peaks"
	"github.com/HamletTheHamster/fftplot/internal/project"
	"github.com/HamletTheHamster/fftplot/internal/report"
	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

// Entry is one written figure.
type Entry struct {
	Job           string
	Unit          string
	Plot          string
	Curves        int
	Normalization spectrum.NormMode
	Factor        float64
	Figure        figure.Figure
	Peaks         []peaks.Result
}

type Summary struct {
	Figures []Entry
	// Skipped lists units that had no data in their region.
	Skipped []string
	Log     string
	Report  string
}

// Runner drives every job of a config through one graphing session.
type Runner struct {
	Config *Config
	Loader *loader.Loader
	// Open replaces the backend named in the config.
	Open figure.Opener

	log []string
}

func NewRunner(cfg *Config) *Runner {
	return &Runner{
		Config: cfg,
		Loader: loader.New(cfg.Root),
	}
}

func (r *Runner) logf(format string, args ...interface{}) {
	r.log = append(r.log, fmt.Sprintf(format, args...)+"\n")
}

// Run executes every job in order. The first error stops the batch; the
// run log and the figures written so far are kept.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	open := r.Open
	if open == nil {
		var err error
		if open, err = figure.LookupBackend(r.Config.Backend); err != nil {
			return nil, err
		}
	}

	sum := &Summary{}
	r.log = nil
	r.logf("fftplot run %s", time.Now().Format(time.RFC3339))
	r.logf("root: %s", r.Config.Root)

	err := figure.With(open, func(s *figure.Session) error {
		for i := range r.Config.Jobs {
			job := &r.Config.Jobs[i]
			r.logf("")
			r.logf("job %s (%s)", job.Name, job.Kind)
			if err := r.runJob(ctx, s, job, sum); err != nil {
				return errors.Wrapf(err, "job %q", job.Name)
			}
		}
		return nil
	})
	if err != nil {
		r.logf("")
		r.logf("aborted: %v", err)
	}

	if lerr := r.writeLog(); lerr != nil {
		if err == nil {
			return sum, lerr
		}
		logrus.WithError(lerr).Warn("failed to write run log")
	} else {
		sum.Log = r.logPath()
	}

	if err == nil && r.Config.Report != "" {
		if err := report.Build(r.Config.Report, "fftplot "+r.Config.Root, reportEntries(sum)); err != nil {
			return sum, err
		}
		sum.Report = r.Config.Report
	}

	return sum, err
}

func (r *Runner) runJob(
	ctx context.Context,
	s *figure.Session,
	job *Job,
	sum *Summary,
) error {

	kind, err := loader.ParseKind(job.Kind)
	if err != nil {
		return err
	}
	mode, err := spectrum.ParseNormMode(job.Normalization.Mode)
	if err != nil {
		return err
	}
	norm := spectrum.Normalization{Mode: mode, Reference: job.Normalization.Reference}

	if kind == loader.Symmetrized {
		for _, u := range ExpandSymmetrized(job) {
			if err := r.runSymmetrized(ctx, s, u, norm, sum); err != nil {
				return err
			}
		}
		return nil
	}

	points, err := loader.Points(kind, job.Sweep)
	if err != nil {
		return err
	}
	units, err := Expand(job)
	if err != nil {
		return err
	}

	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return err
		}

		ds, err := r.loadUnit(u, points)
		if err != nil {
			return err
		}
		if len(ds) == 0 {
			logrus.WithField("unit", u.String()).Debug("no sweep points found")
			continue
		}
		r.logf("%s: %d sweep points", u, len(ds))

		dir := u.Dir(r.Config.OutputDir())
		if err := r.plotAll(ctx, s, job, u.String(), u.Region, dir, sweepFilename(job), ds, norm, sum); err != nil {
			return err
		}
	}

	return nil
}

// loadUnit reads every sweep point of a unit, skipping absent ones unless
// the job requires them.
func (r *Runner) loadUnit(
	u Unit,
	points []loader.SweepPoint,
) (
	spectrum.Dataset, error,
) {

	q := u.Query()
	var ds spectrum.Dataset
	for _, p := range points {
		if u.Job.Required {
			c, err := r.Loader.Require(q, p)
			if err != nil {
				return nil, err
			}
			ds = append(ds, spectrum.Series{Label: p.Label, Curve: c})
			continue
		}

		c, found, err := r.Loader.Load(q, p)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		ds = append(ds, spectrum.Series{Label: p.Label, Curve: c})
	}
	return ds, nil
}

func (r *Runner) runSymmetrized(
	ctx context.Context,
	s *figure.Session,
	u SymmUnit,
	norm spectrum.Normalization,
	sum *Summary,
) error {

	var ds spectrum.Dataset
	for _, variable := range u.Variables {
		c, found, err := r.Loader.LoadSymmetrized(u.Sample, u.Campaign, variable, u.Name)
		if err != nil {
			return err
		}
		if !found {
			if u.Job.Required {
				path := r.Loader.Layout.SymmetrizedPath(u.Sample, u.Campaign, variable, u.Name)
				return errors.Wrap(loader.ErrRequiredMissing, path)
			}
			continue
		}
		ds = append(ds, spectrum.Series{Label: variable, Curve: c})
	}
	if len(ds) == 0 {
		return nil
	}
	r.logf("%s: %d variables", u, len(ds))

	dir := u.Dir(r.Config.OutputDir())
	job := *u.Job

	if wants(job.Plots, Single) {
		single := job
		single.Plots = []string{Single}
		filename := func(string) string { return u.Name }
		for _, series := range ds {
			name := fmt.Sprintf("%s %s", u, series.Label)
			if err := r.plotAll(ctx, s, &single, name, u.Region, filepath.Join(dir, series.Label), filename, spectrum.Dataset{series}, norm, sum); err != nil {
				return err
			}
		}
	}

	overlay := job
	overlay.Plots = nil
	for _, p := range job.Plots {
		if !strings.EqualFold(p, Single) {
			overlay.Plots = append(overlay.Plots, p)
		}
	}
	if len(overlay.Plots) == 0 {
		return nil
	}
	filename := func(kind string) string {
		if kind == Stacked {
			return "both_" + u.Name + "_stacked"
		}
		return "both_" + u.Name
	}
	return r.plotAll(ctx, s, &overlay, u.String(), u.Region, dir, filename, ds, norm, sum)
}

// sweepFilename names the figures of an angle or temperature unit:
// fft_stacked, fft_overlapped and fft_<label> for single curves.
func sweepFilename(job *Job) func(string) string {
	base := "fft"
	if job.Figure.Filename != "" {
		base = job.Figure.Filename
	}
	return func(kind string) string {
		if kind == Single {
			return base
		}
		return base + "_" + kind
	}
}

func wants(plots []string, kind string) bool {
	for _, p := range plots {
		if strings.EqualFold(p, kind) {
			return true
		}
	}
	return false
}

// plotAll filters, normalizes and renders one dataset as every plot kind
// the job asks for.
func (r *Runner) plotAll(
	ctx context.Context,
	s *figure.Session,
	job *Job,
	unit string,
	region Region,
	dir string,
	filename func(kind string) string,
	ds spectrum.Dataset,
	norm spectrum.Normalization,
	sum *Summary,
) error {

	filtered := nonEmpty(ds.Between(region.Start, region.End))
	if len(filtered) == 0 {
		r.logf("%s: no points in [%g, %g], skipped", unit, region.Start, region.End)
		sum.Skipped = append(sum.Skipped, unit)
		return nil
	}

	normalized, factor, err := filtered.Normalize(norm)
	if err != nil {
		return errors.Wrapf(err, "%s: normalize", unit)
	}
	r.logf("%s: %s normalization, factor %g", unit, norm.Mode, factor)

	var fits []peaks.Result
	if job.Peaks {
		fits = peaks.FitAll(normalized)
		for _, f := range fits {
			if f.Err != nil {
				r.logf("  peak %s: %v", f.Label, f.Err)
				continue
			}
			r.logf("  peak %s: %s", f.Label, f.Peak)
		}
	}
	s.Projects = project.Writer{Peaks: fits}

	for _, kind := range job.Plots {
		kind = strings.ToLower(kind)
		opts := plotOptions(job, region, kind, norm.Mode)
		opts.Directory = dir
		opts.Filename = filename(kind)

		figures := []spectrum.Dataset{normalized}
		if kind == Single && len(normalized) > 1 {
			figures = figures[:0]
			for _, series := range normalized {
				figures = append(figures, spectrum.Dataset{series})
			}
		}

		for _, fds := range figures {
			if err := ctx.Err(); err != nil {
				return err
			}

			o := opts
			if len(figures) > 1 {
				o.Filename = opts.Filename + "_" + fileSafe(fds[0].Label)
			}
			fig, err := s.Plot(fds, o)
			if errors.Is(err, figure.ErrNothingToPlot) {
				continue
			}
			if err != nil {
				return errors.Wrapf(err, "%s: %s plot", unit, kind)
			}

			for _, f := range fig.Files {
				r.logf("  wrote %s", f)
			}
			if fig.Project != "" {
				r.logf("  wrote %s", fig.Project)
			}

			sum.Figures = append(sum.Figures, Entry{
				Job:           job.Name,
				Unit:          unit,
				Plot:          kind,
				Curves:        len(fds),
				Normalization: norm.Mode,
				Factor:        factor,
				Figure:        fig,
				Peaks:         fits,
			})
		}
	}

	return nil
}

func fileSafe(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		return r
	}, label)
}

func nonEmpty(ds spectrum.Dataset) spectrum.Dataset {
	out := make(spectrum.Dataset, 0, len(ds))
	for _, s := range ds {
		if s.Curve.Len() > 0 {
			out = append(out, s)
		}
	}
	return out
}

// plotOptions derives the figure options of one plot kind from the job's.
// Stacked figures default to a unit offset; overlapped and single figures
// are never stacked and default to a 0 to 1.1 y-axis when normalized.
func plotOptions(
	job *Job,
	region Region,
	kind string,
	mode spectrum.NormMode,
) figure.Options {

	opts := job.Figure
	opts.XStart, opts.XEnd = region.Start, region.End
	if region.Tick > 0 {
		opts.XTick = region.Tick
	}

	switch kind {
	case Stacked:
		if opts.Offset <= 0 {
			opts.Offset = 1
		}
	default:
		opts.Offset = 0
	}

	if opts.Offset == 0 && opts.YStart == opts.YEnd && mode != spectrum.NormNone {
		opts.YStart, opts.YEnd, opts.YTick = 0, 1.1, 0.2
	}
	return opts
}

func (r *Runner) logPath() string {
	return filepath.Join(r.Config.OutputDir(), "log.txt")
}

func (r *Runner) writeLog() (err error) {
	if err := os.MkdirAll(r.Config.OutputDir(), 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	txt, err := os.Create(r.logPath())
	if err != nil {
		return errors.Wrap(err, "failed to create run log")
	}
	defer func() {
		if cerr := txt.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close run log")
		}
	}()

	w := bufio.NewWriter(txt)
	for _, line := range r.log {
		if _, err := w.WriteString(line); err != nil {
			return errors.Wrap(err, "failed to write run log")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to write run log")
	}
	return nil
}

func reportEntries(sum *Summary) []report.Entry {
	entries := make([]report.Entry, 0, len(sum.Figures))
	for _, f := range sum.Figures {
		lines := []string{
			fmt.Sprintf("job: %s", f.Job),
			fmt.Sprintf("plot: %s, %d curves", f.Plot, f.Curves),
			fmt.Sprintf("normalization: %s, factor %g", f.Normalization, f.Factor),
		}
		for _, p := range f.Peaks {
			if p.Err != nil {
				lines = append(lines, fmt.Sprintf("%s: no fit (%v)", p.Label, p.Err))
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s", p.Label, p.Peak))
		}
		for _, file := range f.Figure.Files {
			lines = append(lines, file)
		}

		entries = append(entries, report.Entry{
			Title: f.Unit,
			Lines: lines,
			Image: f.Figure.File("png"),
		})
	}
	return entries
}
