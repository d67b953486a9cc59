// Package project saves a formatted figure as an .xlsx workbook that can
// be re-opened and re-rendered without the raw data tree.
//
// Layout: a Graph sheet (settings as key/value rows plus a scatter chart
// of every series), one sheet per series (x and y columns, the label in
// the y header), and an optional Peaks sheet.
package project

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/HamletTheHamster/fftplot/internal/figure"
	"github.com/HamletTheHamster/fftplot/internal/peaks"
	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

const (
	GraphSheet = "Graph"
	PeaksSheet = "Peaks"

	creator = "fftplot"
	// Excel's sheet name limit.
	maxSheetName = 31
)

var ErrNotProject = errors.New("workbook is not an fftplot project")

type Project struct {
	ID      string
	Name    string
	Created time.Time
	Options figure.Options
	Series  spectrum.Dataset
	Peaks   []peaks.Result
}

// Writer is the figure.ProjectWriter that saves workbooks, optionally
// with peak fits of every series. Peaks, when set, are written as given
// instead of fitting again.
type Writer struct {
	FitPeaks bool
	Peaks    []peaks.Result
}

func (w Writer) WriteProject(path string, ds spectrum.Dataset, opts figure.Options) error {
	p := Project{
		ID:      uuid.NewString(),
		Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Created: time.Now(),
		Options: opts,
		Series:  ds,
	}
	switch {
	case w.Peaks != nil:
		p.Peaks = w.Peaks
	case w.FitPeaks:
		p.Peaks = peaks.FitAll(ds)
	}
	return Save(path, p)
}

func Save(path string, p Project) error {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", GraphSheet); err != nil {
		return errors.Wrap(err, "failed to name graph sheet")
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Created.IsZero() {
		p.Created = time.Now()
	}

	settings, err := settingRows(p)
	if err != nil {
		return err
	}
	for i, row := range settings {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(GraphSheet, cell, &row); err != nil {
			return errors.Wrap(err, "failed to write settings")
		}
	}
	if err := f.SetColWidth(GraphSheet, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(GraphSheet, "B", "B", 28); err != nil {
		return err
	}

	xlabel := p.Options.XLabel
	if xlabel == "" {
		xlabel = figure.DefaultXLabel
	}

	var chartSeries []excelize.ChartSeries
	for i, s := range p.Series {
		sheet := sheetName(i, s.Label)
		if _, err := f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "failed to add sheet %q", sheet)
		}
		if err := f.SetSheetRow(sheet, "A1", &[]interface{}{xlabel, s.Label}); err != nil {
			return err
		}
		x, y := s.Curve.X, s.Curve.Y
		if err := f.SetSheetCol(sheet, "A2", &x); err != nil {
			return errors.Wrapf(err, "failed to write %q", s.Label)
		}
		if err := f.SetSheetCol(sheet, "B2", &y); err != nil {
			return errors.Wrapf(err, "failed to write %q", s.Label)
		}

		if s.Curve.Len() == 0 {
			continue
		}
		last := s.Curve.Len() + 1
		ref := "'" + sheet + "'!"
		chartSeries = append(chartSeries, excelize.ChartSeries{
			Name:       ref + "$B$1",
			Categories: fmt.Sprintf("%s$A$2:$A$%d", ref, last),
			Values:     fmt.Sprintf("%s$B$2:$B$%d", ref, last),
			Line:       excelize.ChartLine{Width: 1.5},
			Marker:     excelize.ChartMarker{Symbol: "none"},
		})
	}

	if len(chartSeries) > 0 {
		chart := &excelize.Chart{
			Type:   excelize.Scatter,
			Series: chartSeries,
			Title:  []excelize.RichTextRun{{Text: chartTitle(p)}},
			XAxis: excelize.ChartAxis{
				Title: []excelize.RichTextRun{{Text: xlabel}},
			},
			YAxis: excelize.ChartAxis{
				MajorGridLines: p.Options.Grid,
				Title:          []excelize.RichTextRun{{Text: p.Options.YLabel}},
			},
			Legend:    excelize.ChartLegend{Position: "right"},
			Dimension: excelize.ChartDimension{Width: 720, Height: 540},
		}
		if p.Options.XStart != p.Options.XEnd {
			chart.XAxis.Minimum = &p.Options.XStart
			chart.XAxis.Maximum = &p.Options.XEnd
		}
		if err := f.AddChart(GraphSheet, "D2", chart); err != nil {
			return errors.Wrap(err, "failed to add chart")
		}
	}

	if len(p.Peaks) > 0 {
		if err := writePeaks(f, p.Peaks); err != nil {
			return err
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Identifier:  p.ID,
		Title:       p.Name,
		Creator:     creator,
		Created:     p.Created.UTC().Format(time.RFC3339),
		Description: fmt.Sprintf("%d series", len(p.Series)),
	}); err != nil {
		return errors.Wrap(err, "failed to set document properties")
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}

	logrus.WithFields(logrus.Fields{
		"project": path,
		"id":      p.ID,
	}).Debug("project saved")

	return nil
}

func chartTitle(p Project) string {
	if p.Options.Title != "" {
		return p.Options.Title
	}
	return p.Name
}

// sheetName makes a unique, valid sheet name for series i.
func sheetName(i int, label string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\'`, r) {
			return '_'
		}
		return r
	}, label)

	name := fmt.Sprintf("%02d %s", i+1, clean)
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}

// settingRows are the Graph sheet's key/value rows. Options are written
// through their YAML encoding so the sheet and the batch config share
// field names.
func settingRows(p Project) ([][]interface{}, error) {
	rows := [][]interface{}{
		{"key", "value"},
		{"id", p.ID},
		{"name", p.Name},
		{"created", p.Created.UTC().Format(time.RFC3339)},
		{"series", len(p.Series)},
	}

	var node yaml.Node
	if err := node.Encode(p.Options); err != nil {
		return nil, errors.Wrap(err, "failed to encode options")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind == yaml.SequenceNode {
			value.Style = yaml.FlowStyle
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode %s", key.Value)
		}
		rows = append(rows, []interface{}{"figure." + key.Value, strings.TrimSpace(string(out))})
	}

	return rows, nil
}

func writePeaks(f *excelize.File, results []peaks.Result) error {
	if _, err := f.NewSheet(PeaksSheet); err != nil {
		return err
	}
	header := []interface{}{"label", "center", "fwhm", "amplitude", "offset", "error"}
	if err := f.SetSheetRow(PeaksSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range results {
		row := []interface{}{r.Label, r.Peak.Center, r.Peak.Width, r.Peak.Amplitude, r.Peak.Offset, ""}
		if r.Err != nil {
			row = []interface{}{r.Label, "", "", "", "", r.Err.Error()}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(PeaksSheet, cell, &row); err != nil {
			return errors.Wrap(err, "failed to write peaks")
		}
	}
	return nil
}

// Load reads a project saved by Save.
func Load(path string) (Project, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Project{}, errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close workbook")
		}
	}()

	rows, err := f.GetRows(GraphSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Project{}, errors.Wrapf(ErrNotProject, "%s: %v", path, err)
	}

	var p Project
	options := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		key, value := row[0], ""
		if len(row) > 1 {
			value = row[1]
		}

		switch {
		case key == "id":
			p.ID = value
		case key == "name":
			p.Name = value
		case key == "created":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				p.Created = t
			}
		case strings.HasPrefix(key, "figure."):
			var doc yaml.Node
			if err := yaml.Unmarshal([]byte(value), &doc); err != nil {
				return Project{}, errors.Wrapf(err, "setting %s", key)
			}
			if len(doc.Content) == 0 {
				continue
			}
			options.Content = append(options.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: strings.TrimPrefix(key, "figure.")},
				doc.Content[0],
			)
		}
	}
	if p.ID == "" {
		return Project{}, errors.Wrapf(ErrNotProject, "%s has no project id", path)
	}
	if err := options.Decode(&p.Options); err != nil {
		return Project{}, errors.Wrap(err, "failed to decode options")
	}

	for _, sheet := range f.GetSheetList() {
		if sheet == PeaksSheet {
			if p.Peaks, err = readPeaks(f); err != nil {
				return Project{}, err
			}
			continue
		}
		if sheet == GraphSheet {
			continue
		}
		s, err := readSeries(f, sheet)
		if err != nil {
			return Project{}, err
		}
		p.Series = append(p.Series, s)
	}

	return p, nil
}

func readSeries(f *excelize.File, sheet string) (spectrum.Series, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return spectrum.Series{}, errors.Wrapf(err, "sheet %q", sheet)
	}
	if len(rows) == 0 || len(rows[0]) < 2 {
		return spectrum.Series{}, errors.Errorf("sheet %q has no header", sheet)
	}

	s := spectrum.Series{Label: rows[0][1]}
	for i, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		x, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return spectrum.Series{}, errors.Wrapf(err, "sheet %q row %d", sheet, i+2)
		}
		y, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return spectrum.Series{}, errors.Wrapf(err, "sheet %q row %d", sheet, i+2)
		}
		s.Curve.X = append(s.Curve.X, x)
		s.Curve.Y = append(s.Curve.Y, y)
	}

	return s, nil
}

func readPeaks(f *excelize.File) ([]peaks.Result, error) {
	rows, err := f.GetRows(PeaksSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrap(err, "peaks sheet")
	}

	var out []peaks.Result
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		r := peaks.Result{Label: row[0]}
		if len(row) >= 6 && row[5] != "" {
			r.Err = errors.New(row[5])
			out = append(out, r)
			continue
		}

		var v [4]float64
		for j := range v {
			if j+1 >= len(row) {
				break
			}
			if v[j], err = strconv.ParseFloat(row[j+1], 64); err != nil {
				return nil, errors.Wrapf(err, "peaks row %d", i+1)
			}
		}
		r.Peak = peaks.Peak{Center: v[0], Width: v[1], Amplitude: v[2], Offset: v[3]}
		out = append(out, r)
	}
	return out, nil
}
