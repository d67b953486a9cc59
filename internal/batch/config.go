// Package batch runs plotting jobs described by a YAML config over a
// measurement output tree.
package batch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/HamletTheHamster/fftplot/internal/figure"
	"github.com/HamletTheHamster/fftplot/internal/loader"
	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

// Plot kinds.
const (
	Stacked    = "stacked"
	Overlapped = "overlapped"
	Single     = "single"
)

// Config is the root of a batch file.
type Config struct {
	Root    string `yaml:"root"`
	Backend string `yaml:"backend"`
	// Output defaults to <root>/plots.
	Output string `yaml:"output"`
	// Report is the path of the contact-sheet PDF; empty disables it.
	Report string `yaml:"report"`
	Jobs   []Job  `yaml:"jobs"`
}

// Region is an x window plotted as its own figure.
type Region struct {
	Name  string  `yaml:"name"`
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Tick  float64 `yaml:"tick"`
}

type Normalization struct {
	Mode string `yaml:"mode"`
	// Reference is a list index into the loaded curves.
	Reference int `yaml:"reference"`
}

type Job struct {
	Name         string   `yaml:"name"`
	Kind         string   `yaml:"kind"`
	Samples      []string `yaml:"samples"`
	Variables    []string `yaml:"variables"`
	Commutations []string `yaml:"commutations"`
	Directions   []string `yaml:"directions"`
	// Folder replaces the measurement folder derived from kind,
	// commutation and direction.
	Folder string `yaml:"folder"`
	Type   string `yaml:"type"`
	// Sweep holds angles in degrees or temperature tokens such as 1p3.
	Sweep []string `yaml:"sweep"`
	// Campaigns and Names are for symmetrized jobs: the campaign folders
	// and the file names inside them.
	Campaigns     []string       `yaml:"campaigns"`
	Names         []string       `yaml:"names"`
	Regions       []Region       `yaml:"regions"`
	Normalization Normalization  `yaml:"normalization"`
	Required      bool           `yaml:"required"`
	Plots         []string       `yaml:"plots"`
	Peaks         bool           `yaml:"peaks"`
	Figure        figure.Options `yaml:"figure"`
}

func Default() *Config {
	return &Config{
		Backend: "native",
	}
}

func DefaultJob() Job {
	return Job{
		Type:    "fft",
		Regions: []Region{{Start: 100, End: 700, Tick: 100}},
		Plots:   []string{Stacked},
		Figure:  figure.DefaultOptions(),
	}
}

// UnmarshalYAML decodes a job over DefaultJob so omitted keys, including
// the nested figure options, keep their defaults.
func (j *Job) UnmarshalYAML(value *yaml.Node) error {
	type plain Job
	*j = DefaultJob()
	return value.Decode((*plain)(j))
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if cfg.Root != "" && !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}

	return cfg, cfg.Validate()
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

func (c *Config) OutputDir() string {
	if c.Output != "" {
		return c.Output
	}
	return filepath.Join(c.Root, "plots")
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("config: root is required")
	}
	if _, err := figure.LookupBackend(c.Backend); err != nil {
		return errors.Wrap(err, "config")
	}

	for i := range c.Jobs {
		j := &c.Jobs[i]
		if err := j.validate(); err != nil {
			return errors.Wrapf(err, "config: job %d (%s)", i+1, j.Name)
		}
	}
	return nil
}

func (j *Job) validate() error {
	kind, err := loader.ParseKind(j.Kind)
	if err != nil {
		return err
	}
	if len(j.Samples) == 0 || len(j.Variables) == 0 {
		return errors.New("samples and variables are required")
	}

	switch kind {
	case loader.Symmetrized:
		if len(j.Campaigns) == 0 || len(j.Names) == 0 {
			return errors.New("symmetrized jobs need campaigns and names")
		}
	default:
		if len(j.Sweep) == 0 {
			return errors.New("sweep is required")
		}
		if j.Folder == "" && (len(j.Commutations) == 0 || len(j.Directions) == 0) {
			return errors.New("commutations and directions are required without an explicit folder")
		}
		if _, err := loader.Points(kind, j.Sweep); err != nil {
			return err
		}
	}

	if _, err := spectrum.ParseNormMode(j.Normalization.Mode); err != nil {
		return err
	}
	for _, r := range j.Regions {
		if r.End <= r.Start {
			return errors.Errorf("region %q: end must be above start", r.Name)
		}
	}
	for _, p := range j.Plots {
		switch strings.ToLower(p) {
		case Stacked, Overlapped, Single:
		default:
			return errors.Errorf("unknown plot kind %q", p)
		}
	}
	return nil
}

// Example is the config `fftplot init` writes: one job of each kind.
func Example(root string) *Config {
	cfg := Default()
	cfg.Root = root

	variables := []string{"Rxx68", "Rxy37", "Rxy48", "Rxx_1_7", "Rxx_2_7", "Rxx_17_18", "Rxy_2_17"}

	angle := DefaultJob()
	angle.Name = "angle"
	angle.Kind = string(loader.Angle)
	angle.Samples = []string{"Zr3_1458_nb_hf"}
	angle.Variables = variables
	angle.Commutations = []string{"pos", "neg"}
	angle.Directions = []string{"up", "down"}
	angle.Sweep = []string{"-10", "-5", "0", "5", "10", "20", "25", "30", "40", "45", "50", "60", "70", "75", "80", "90"}
	angle.Normalization = Normalization{Mode: string(spectrum.NormGlobal)}
	angle.Figure.Offset = 1.1

	temp := DefaultJob()
	temp.Name = "temperature"
	temp.Kind = string(loader.Temperature)
	temp.Samples = []string{"Zr3_5584_nb_sc", "Zr3_1458_nb_hf"}
	temp.Variables = variables
	temp.Commutations = []string{"pos", "neg"}
	temp.Directions = []string{"up", "down"}
	temp.Sweep = []string{"1p3", "2p5", "3p2", "4p2", "6p0", "8p0", "8p95", "12p0", "18p0", "25p0", "35p0", "45p0", "50p0"}
	temp.Regions = []Region{
		{Name: "low", Start: 100, End: 700, Tick: 100},
		{Name: "high", Start: 6000, End: 8000, Tick: 400},
	}
	temp.Plots = []string{Stacked, Overlapped}
	temp.Figure.Palette = figure.Fire
	temp.Figure.Offset = 1

	symm := DefaultJob()
	symm.Name = "symmetrized"
	symm.Kind = string(loader.Symmetrized)
	symm.Samples = []string{"Zr3_5584_nb_hf"}
	symm.Variables = []string{"Rxx_10_14", "Rxy_7_9"}
	symm.Campaigns = []string{"1p3K_pos_up", "1p3K_neg_up"}
	symm.Names = []string{"pos", "neg", "neg_boxcar"}
	symm.Normalization = Normalization{Mode: string(spectrum.NormPerCurve)}
	symm.Required = true
	symm.Plots = []string{Single, Overlapped}
	symm.Figure.Palette = figure.Classic
	symm.Figure.Stretch = false
	symm.Figure.YStart, symm.Figure.YEnd, symm.Figure.YTick = 0, 1.1, 0.2

	cfg.Jobs = []Job{angle, temp, symm}
	return cfg
}
