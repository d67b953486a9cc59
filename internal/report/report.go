// Package report writes a contact sheet of a batch run: one landscape
// Letter page per figure with its PNG export and a caption.
package report

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	inchToMm      = 25.4
	pageWidth     = 11 * inchToMm
	pageHeight    = 8.5 * inchToMm
	margin        = 0.5 * inchToMm
	contentWidth  = pageWidth - 2*margin
	contentHeight = pageHeight - 2*margin
	lineHeight    = 6
	titleHeight   = 12
	gap           = 8
)

// Entry is one page. Image is the path of a PNG export; without one the
// page carries only text.
type Entry struct {
	Title string
	Lines []string
	Image string
}

type sheet struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (s *sheet) title(text string) {
	s.pdf.SetFont("Arial", "B", 16)
	s.pdf.SetXY(margin, margin)
	s.pdf.CellFormat(contentWidth, titleHeight, s.tr(text), "", 0, "L", false, 0, "")
}

func (s *sheet) lines(x, y, w float64, lines []string) {
	s.pdf.SetFont("Arial", "", 10)
	s.pdf.SetXY(x, y)
	for _, l := range lines {
		s.pdf.SetX(x)
		s.pdf.MultiCell(w, lineHeight, s.tr(l), "", "L", false)
	}
}

// image fits a PNG into a square box, keeping its aspect ratio.
func (s *sheet) image(path string, x, y, side float64) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	info := s.pdf.RegisterImageReader(path, "PNG", bytes.NewReader(data))
	if err := s.pdf.Error(); err != nil {
		return err
	}

	w, h := side, side
	if iw, ih := info.Extent(); iw > 0 && ih > 0 {
		if iw > ih {
			h = side * ih / iw
		} else {
			w = side * iw / ih
		}
	}
	s.pdf.Image(path, x, y, w, h, false, "PNG", 0, "")
	return nil
}

// Build writes the contact sheet to path.
func Build(path string, title string, entries []Entry) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("fftplot", true)

	s := &sheet{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	if len(entries) == 0 {
		pdf.AddPage()
		s.title(title)
		s.lines(margin, margin+titleHeight+gap, contentWidth, []string{"No figures were written."})
	}

	for i, e := range entries {
		pdf.AddPage()
		s.title(e.Title)

		top := margin + titleHeight + gap
		side := contentHeight - titleHeight - gap
		textX, textW := margin, contentWidth

		if e.Image != "" {
			if err := s.image(e.Image, margin, top, side); err != nil {
				logrus.WithError(err).WithField("image", e.Image).Warn("figure left out of report")
				pdf.ClearError()
				e.Lines = append(e.Lines, fmt.Sprintf("image unavailable: %s", e.Image))
			} else {
				textX, textW = margin+side+gap, contentWidth-side-gap
			}
		}

		s.lines(textX, top, textW, e.Lines)

		pdf.SetFont("Arial", "", 8)
		pdf.SetXY(margin, pageHeight-margin)
		pdf.CellFormat(contentWidth, 4, fmt.Sprintf("%d / %d", i+1, len(entries)), "", 0, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return errors.Wrapf(err, "failed to write report %s", path)
	}

	logrus.WithFields(logrus.Fields{
		"report": path,
		"pages":  pdf.PageNo(),
	}).Info("report written")

	return nil
}
