package figure

import (
	"errors"
	"image/color"
	"testing"

	"gonum.org/v1/plot/plotutil"
)

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

func TestColorsSequentialCycles(t *testing.T) {
	n := len(plotutil.DefaultColors) + 2
	got, err := Colors(SystemColorList, n, false)
	if err != nil {
		t.Fatalf("Colors: %v", err)
	}
	if len(got) != n {
		t.Fatalf("expected %d colors, got %d", n, len(got))
	}
	if !sameColor(got[len(plotutil.DefaultColors)], got[0]) {
		t.Errorf("expected the list to cycle")
	}
}

func TestColorsStretchUsesBothEnds(t *testing.T) {
	got, err := Colors(Classic, 3, true)
	if err != nil {
		t.Fatalf("Colors: %v", err)
	}
	if !sameColor(got[0], classic[0]) || !sameColor(got[2], classic[len(classic)-1]) {
		t.Errorf("stretched palette should span the table: %v", got)
	}

	seq, _ := Colors(Classic, 3, false)
	if !sameColor(seq[2], classic[2]) {
		t.Errorf("sequential palette should take colors in order")
	}
}

func TestColorMaps(t *testing.T) {
	for _, name := range []string{Fire, "fire", Rainbow, BlackBody, Kindlmann, BlueRed} {
		for _, n := range []int{1, 2, 5, 13} {
			got, err := Colors(name, n, true)
			if err != nil {
				t.Fatalf("Colors(%s, %d): %v", name, n, err)
			}
			if len(got) != n {
				t.Errorf("Colors(%s, %d) gave %d colors", name, n, len(got))
			}
			for i, c := range got {
				if c == nil {
					t.Errorf("Colors(%s, %d)[%d] is nil", name, n, i)
				}
			}
		}
	}
}

func TestColorsBrewer(t *testing.T) {
	got, err := Colors("Set1", 4, true)
	if err != nil {
		t.Fatalf("Colors: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("expected 4 colors, got %d", len(got))
	}

	got, err = Colors("Dark2", 20, false)
	if err != nil {
		t.Fatalf("Colors: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("expected 20 colors, got %d", len(got))
	}
}

func TestColorsUnknown(t *testing.T) {
	if _, err := Colors("Viridian", 3, true); !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("expected ErrUnknownPalette, got %v", err)
	}
}

func TestLookupTheme(t *testing.T) {
	th, err := LookupTheme("physical review letters")
	if err != nil {
		t.Fatalf("LookupTheme: %v", err)
	}
	if th.Name != PhysicalReviewLetters {
		t.Errorf("unexpected theme %q", th.Name)
	}
	if _, err := LookupTheme("Nature"); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("expected ErrUnknownTheme, got %v", err)
	}
}

func TestLookupBackend(t *testing.T) {
	for _, name := range []string{"", "Native", " native "} {
		if open, err := LookupBackend(name); err != nil || open == nil {
			t.Errorf("LookupBackend(%q): %v", name, err)
		}
	}
	if _, err := LookupBackend("origin"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}
