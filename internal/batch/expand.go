package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/HamletTheHamster/fftplot/internal/loader"
)

// Unit is one figure directory of a sweep job: every sweep point of one
// (sample, variable, commutation, direction) in one region.
type Unit struct {
	Job         *Job
	Kind        loader.Kind
	Sample      string
	Variable    string
	Commutation string
	Direction   string
	Region      Region
}

func (u Unit) Query() loader.Query {
	return loader.Query{
		Sample:      u.Sample,
		Kind:        u.Kind,
		Commutation: u.Commutation,
		Direction:   u.Direction,
		Folder:      u.Job.Folder,
		Variable:    u.Variable,
		Type:        u.Job.Type,
	}
}

// Dir is the output directory of the unit's figures:
//
//	<output>/<sample>/<kind>/<variable>/<commutation>/<direction>/[<region>freq/]
//
// An explicit measurement folder replaces the commutation and direction.
func (u Unit) Dir(output string) string {
	parts := []string{output, u.Sample, u.Kind.Short(), u.Variable}
	if u.Job.Folder != "" {
		parts = append(parts, u.Job.Folder)
	} else {
		parts = append(parts, u.Commutation, u.Direction)
	}
	if u.Region.Name != "" {
		parts = append(parts, u.Region.Name+"freq")
	}
	return filepath.Join(parts...)
}

func (u Unit) String() string {
	s := fmt.Sprintf("%s: %s %s %s", u.Sample, u.Variable, u.Commutation, u.Direction)
	if u.Job.Folder != "" {
		s = fmt.Sprintf("%s: %s %s", u.Sample, u.Variable, u.Job.Folder)
	}
	if u.Region.Name != "" {
		s += " " + u.Region.Name
	}
	return s
}

// Expand enumerates the units of an angle or temperature job in config
// order: sample, variable, commutation, direction, region.
func Expand(j *Job) ([]Unit, error) {
	kind, err := loader.ParseKind(j.Kind)
	if err != nil {
		return nil, err
	}
	if kind == loader.Symmetrized {
		return nil, errors.Errorf("job %q: symmetrized jobs expand with ExpandSymmetrized", j.Name)
	}

	commutations, directions := j.Commutations, j.Directions
	if j.Folder != "" {
		commutations, directions = []string{""}, []string{""}
	}

	var units []Unit
	for _, sample := range j.Samples {
		for _, variable := range j.Variables {
			for _, c := range commutations {
				for _, d := range directions {
					for _, r := range j.Regions {
						units = append(units, Unit{
							Job:         j,
							Kind:        kind,
							Sample:      sample,
							Variable:    variable,
							Commutation: c,
							Direction:   d,
							Region:      r,
						})
					}
				}
			}
		}
	}

	return units, nil
}

// SymmUnit is one symmetrized file name of one campaign, across every
// variable of the job.
type SymmUnit struct {
	Job       *Job
	Sample    string
	Campaign  string
	Name      string
	Variables []string
	Region    Region
}

// Dir is <output>/<sample>/symm/[<region>freq/]; single-variable plots go
// one level deeper, under the variable.
func (u SymmUnit) Dir(output string) string {
	dir := filepath.Join(output, u.Sample, loader.Symmetrized.Short())
	if u.Region.Name != "" {
		dir = filepath.Join(dir, u.Region.Name+"freq")
	}
	return dir
}

func (u SymmUnit) String() string {
	return fmt.Sprintf("%s: %s %s", u.Sample, u.Campaign, u.Name)
}

// ExpandSymmetrized enumerates (sample, campaign, name, region) in config
// order, keeping only the names that belong to the campaign.
func ExpandSymmetrized(j *Job) []SymmUnit {
	var units []SymmUnit
	for _, sample := range j.Samples {
		for _, campaign := range j.Campaigns {
			for _, name := range j.Names {
				if !nameApplies(campaign, name) {
					continue
				}
				for _, r := range j.Regions {
					units = append(units, SymmUnit{
						Job:       j,
						Sample:    sample,
						Campaign:  campaign,
						Name:      name,
						Variables: j.Variables,
						Region:    r,
					})
				}
			}
		}
	}
	return units
}

// nameApplies reports whether a file name such as "neg" or "neg_boxcar"
// belongs to a campaign such as "1p3K_neg_up": the name's first token
// must be one of the campaign's tokens.
func nameApplies(campaign, name string) bool {
	head := strings.SplitN(name, "_", 2)[0]
	for _, tok := range strings.Split(campaign, "_") {
		if tok == head {
			return true
		}
	}
	return false
}
