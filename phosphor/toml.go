package phosphor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// tomlDecayTerm mirrors the on-disk [[<DESIG>.decay_terms]] table, per
// spec.md §6.
type tomlDecayTerm struct {
	Type      string  `toml:"type"`
	Amplitude float32 `toml:"amplitude"`
	Tau       float32 `toml:"tau"`
	Alpha     float32 `toml:"alpha"`
	Beta      float32 `toml:"beta"`
}

func (t tomlDecayTerm) toDecayTerm(designation string) (DecayTerm, error) {
	switch t.Type {
	case "exponential":
		return NewExponential(t.Amplitude, t.Tau), nil
	case "power_law":
		return NewPowerLaw(t.Amplitude, t.Alpha, t.Beta), nil
	default:
		return DecayTerm{}, fmt.Errorf("%s: unknown decay term type %q", designation, t.Type)
	}
}

// tomlLayer mirrors the optional nested [<DESIG>.fluorescence] /
// [<DESIG>.phosphorescence] tables.
type tomlLayer struct {
	PeakNM       float32         `toml:"peak_nm"`
	FWHMnm       *float32        `toml:"fwhm_nm"`
	SpectrumCSV  *string         `toml:"spectrum_csv"`
	DecayTerms   []tomlDecayTerm `toml:"decay_terms"`
}

// tomlPhosphor mirrors the top-level [<DESIGNATION>] table.
type tomlPhosphor struct {
	Description          string          `toml:"description"`
	Category              string          `toml:"category"`
	PeakNM                float32         `toml:"peak_nm"`
	FWHMnm                *float32        `toml:"fwhm_nm"`
	SpectrumCSV           *string         `toml:"spectrum_csv"`
	RelativeLuminance     float32         `toml:"relative_luminance"`
	RelativeWritingSpeed  float32         `toml:"relative_writing_speed"`
	DualLayer             bool            `toml:"dual_layer"`
	DecayTerms            []tomlDecayTerm `toml:"decay_terms"`
	Fluorescence          *tomlLayer      `toml:"fluorescence"`
	Phosphorescence       *tomlLayer      `toml:"phosphorescence"`
}

func parseCategory(designation, s string) (Category, error) {
	switch s {
	case "general_purpose":
		return GeneralPurpose, nil
	case "short_decay":
		return ShortDecay, nil
	case "video_display":
		return VideoDisplay, nil
	case "long_decay_sulfide":
		return LongDecaySulfide, nil
	default:
		return 0, fmt.Errorf("%s: unknown phosphor category %q", designation, s)
	}
}

func resolveEmissionWeights(designation string, peakNM float32, fwhmNM *float32, spectrumCSV *string, basePath string) ([Bands]float32, error) {
	if spectrumCSV != nil {
		if basePath == "" {
			return [Bands]float32{}, fmt.Errorf("%s: spectrum_csv requires a base path for resolution", designation)
		}
		csvPath := filepath.Join(basePath, *spectrumCSV)
		data, err := os.ReadFile(csvPath)
		if err != nil {
			return [Bands]float32{}, fmt.Errorf("%s: failed to read %s: %w", designation, csvPath, err)
		}
		weights, err := CSVToEmissionWeights(string(data))
		if err != nil {
			return [Bands]float32{}, fmt.Errorf("%s: failed to parse %s: %w", designation, csvPath, err)
		}
		return weights, nil
	}
	if fwhmNM == nil {
		return [Bands]float32{}, fmt.Errorf("%s: need fwhm_nm or spectrum_csv for emission weights", designation)
	}
	return GaussianEmissionWeights(float64(peakNM), float64(*fwhmNM)), nil
}

func toDecayTerms(designation string, terms []tomlDecayTerm) ([]DecayTerm, error) {
	out := make([]DecayTerm, 0, len(terms))
	for _, t := range terms {
		dt, err := t.toDecayTerm(designation)
		if err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return out, nil
}

func buildLayer(designation string, peakNM float32, fwhmNM *float32, spectrumCSV *string, terms []tomlDecayTerm, basePath string) (Layer, error) {
	weights, err := resolveEmissionWeights(designation, peakNM, fwhmNM, spectrumCSV, basePath)
	if err != nil {
		return Layer{}, err
	}
	decayTerms, err := toDecayTerms(designation, terms)
	if err != nil {
		return Layer{}, err
	}
	return Layer{EmissionWeights: weights, DecayTerms: decayTerms}, nil
}

func buildPhosphor(designation string, data tomlPhosphor, basePath string) (Phosphor, error) {
	category, err := parseCategory(designation, data.Category)
	if err != nil {
		return Phosphor{}, err
	}

	var fluorescence, phosphorescence Layer
	isDual := data.DualLayer
	if isDual {
		fl := data.Fluorescence
		ph := data.Phosphorescence
		if fl == nil {
			return Phosphor{}, fmt.Errorf("%s: dual_layer = true but missing [fluorescence]", designation)
		}
		if ph == nil {
			return Phosphor{}, fmt.Errorf("%s: dual_layer = true but missing [phosphorescence]", designation)
		}
		flTerms := fl.DecayTerms
		if len(flTerms) == 0 {
			flTerms = data.DecayTerms
		}
		phTerms := ph.DecayTerms
		if len(phTerms) == 0 {
			phTerms = data.DecayTerms
		}
		fluorescence, err = buildLayer(designation, fl.PeakNM, fl.FWHMnm, fl.SpectrumCSV, flTerms, basePath)
		if err != nil {
			return Phosphor{}, err
		}
		phosphorescence, err = buildLayer(designation, ph.PeakNM, ph.FWHMnm, ph.SpectrumCSV, phTerms, basePath)
		if err != nil {
			return Phosphor{}, err
		}
	} else {
		layer, err := buildLayer(designation, data.PeakNM, data.FWHMnm, data.SpectrumCSV, data.DecayTerms, basePath)
		if err != nil {
			return Phosphor{}, err
		}
		fluorescence = layer
		phosphorescence = layer
	}

	return Phosphor{
		Designation:          designation,
		Description:          data.Description,
		Category:             category,
		IsDualLayer:          isDual,
		Fluorescence:         fluorescence,
		Phosphorescence:      phosphorescence,
		PeakNM:               data.PeakNM,
		RelativeLuminance:    data.RelativeLuminance,
		RelativeWritingSpeed: data.RelativeWritingSpeed,
	}, nil
}

// LoadDatabaseWithBasePath parses phosphor definitions from a TOML
// document, resolving any spectrum_csv paths relative to basePath (which
// may be empty if no entry uses spectrum_csv). Phosphors are returned
// sorted by designation for deterministic ordering.
func LoadDatabaseWithBasePath(tomlText, basePath string) ([]Phosphor, error) {
	var table map[string]tomlPhosphor
	if _, err := toml.Decode(tomlText, &table); err != nil {
		return nil, fmt.Errorf("phosphor database: %w", err)
	}

	designations := make([]string, 0, len(table))
	for k := range table {
		designations = append(designations, k)
	}
	sort.Strings(designations)

	out := make([]Phosphor, 0, len(designations))
	for _, designation := range designations {
		p, err := buildPhosphor(designation, table[designation], basePath)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadDatabase parses phosphor definitions from a TOML document with no
// base path; any spectrum_csv entry will fail to resolve.
func LoadDatabase(tomlText string) ([]Phosphor, error) {
	return LoadDatabaseWithBasePath(tomlText, "")
}

// LoadDatabaseFile loads phosphor definitions from a TOML file on disk,
// resolving spectrum_csv paths relative to the file's parent directory.
func LoadDatabaseFile(path string) ([]Phosphor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("phosphor database: %w", err)
	}
	base := filepath.Dir(path)
	return LoadDatabaseWithBasePath(string(data), base)
}
