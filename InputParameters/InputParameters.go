package InputParameters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/mitchellh/go-homedir"

	"github.com/notargets/gofea/analysis"
	"github.com/notargets/gofea/femm"
	"github.com/notargets/gofea/types"
)

// Parameters obtained from the YAML model file
type ModelParameters struct {
	Title             string                  `json:"Title"`
	Analysis          string                  `json:"Analysis"`
	Materials         string                  `json:"Materials,omitempty"` // INI material library
	Nodes             [][]float64             `json:"Nodes"`
	Regions           []RegionParameters      `json:"Regions"`
	EssentialBCs      []EssentialBCParameters `json:"EssentialBCs,omitempty"`
	TractionBCs       []TractionBCParameters  `json:"TractionBCs,omitempty"`
	TemperatureChange *float64                `json:"TemperatureChange,omitempty"`
	Neigvs            int                     `json:"Neigvs,omitempty"`
	OmegaShift        float64                 `json:"OmegaShift,omitempty"`
	UseLumpedMass     bool                    `json:"UseLumpedMass,omitempty"`
}

// A region of bars sharing a cross section and a material. The material is
// either named from the library or given inline.
type RegionParameters struct {
	Name         string   `json:"Name"`
	Connectivity [][2]int `json:"Connectivity"`
	Area         float64  `json:"Area"`
	Material     string   `json:"Material,omitempty"`
	E            *float64 `json:"E,omitempty"`
	Rho          *float64 `json:"Rho,omitempty"`
	Alpha        *float64 `json:"Alpha,omitempty"`
}

type EssentialBCParameters struct {
	NodeList     []int   `json:"NodeList"`
	Component    any     `json:"Component,omitempty"` // "all", "x", "y", "z" or an index
	Displacement float64 `json:"Displacement,omitempty"`
}

// A traction either loads the listed nodes over a tributary Area, or is a
// load per unit length along every bar of a Region.
type TractionBCParameters struct {
	Nodes          []int     `json:"Nodes,omitempty"`
	Area           float64   `json:"Area,omitempty"`
	Region         string    `json:"Region,omitempty"`
	TractionVector []float64 `json:"TractionVector"`
}

// Parse reads the YAML model. Keys that do not belong to the model are
// rejected.
func (mp *ModelParameters) Parse(data []byte) (err error) {
	var js []byte
	if js, err = yaml.YAMLToJSON(data); err != nil {
		return
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.DisallowUnknownFields()
	if err = dec.Decode(mp); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return fmt.Errorf("%w: %v", analysis.ErrUnrecognizedOption, err)
		}
		return fmt.Errorf("%w: %v", analysis.ErrInvalidInput, err)
	}
	return
}

// ReadModelFile parses the model file at path, with ~ expanded.
func ReadModelFile(path string) (mp *ModelParameters, err error) {
	if path, err = homedir.Expand(path); err != nil {
		return
	}
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	mp = &ModelParameters{}
	if err = mp.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return
}

func (mp *ModelParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", mp.Title)
	fmt.Printf("[%s]\t\t\t= Analysis\n", mp.Analysis)
	fmt.Printf("[%d]\t\t\t\t= Nodes\n", len(mp.Nodes))
	if mp.Materials != "" {
		fmt.Printf("[%s]\t= Materials\n", mp.Materials)
	}
	names := make([]string, len(mp.Regions))
	for i, r := range mp.Regions {
		names[i] = r.Name
	}
	sort.Strings(names)
	for _, name := range names {
		for _, r := range mp.Regions {
			if r.Name == name {
				fmt.Printf("Regions[%s] = %d bars, area %g, material %q\n",
					name, len(r.Connectivity), r.Area, r.Material)
			}
		}
	}
	fmt.Printf("[%d]\t\t\t\t= Essential BCs\n", len(mp.EssentialBCs))
	fmt.Printf("[%d]\t\t\t\t= Traction BCs\n", len(mp.TractionBCs))
	if mp.TemperatureChange != nil {
		fmt.Printf("%8.5f\t\t= Temperature Change\n", *mp.TemperatureChange)
	}
	if kind, _ := types.NewAnalysisKind(mp.Analysis); kind == types.Analysis_Modal {
		fmt.Printf("[%d]\t\t\t\t= Neigvs\n", mp.Neigvs)
		fmt.Printf("%8.5f\t\t= OmegaShift\n", mp.OmegaShift)
		fmt.Printf("[%t]\t\t\t= UseLumpedMass\n", mp.UseLumpedMass)
	}
}

// Model is a parsed model ready to run.
type Model struct {
	Title       string
	Kind        types.AnalysisKind
	Record      analysis.Record
	RegionNames []string
	Bars        map[string]*femm.Bar
}

// NewModel builds the machines of the model and its Model Data Exchange
// record. Relative material library paths are resolved against baseDir.
func (mp *ModelParameters) NewModel(baseDir string) (m *Model, err error) {
	m = &Model{
		Title: mp.Title,
		Bars:  make(map[string]*femm.Bar),
	}
	if m.Kind, err = types.NewAnalysisKind(mp.Analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrInvalidInput, err)
	}
	var mats femm.Materials
	if mp.Materials != "" {
		if mats, err = femm.LoadMaterials(resolve(baseDir, mp.Materials)); err != nil {
			return nil, err
		}
	}

	rec := analysis.Record{}
	if len(mp.Nodes) > 0 {
		rec["fens"] = mp.Nodes
	}
	regions := make([]analysis.Record, 0, len(mp.Regions))
	for i, rp := range mp.Regions {
		name := rp.Name
		if name == "" {
			name = fmt.Sprintf("region%d", i)
		}
		if _, dup := m.Bars[name]; dup {
			return nil, fmt.Errorf("%w: region %q listed twice", analysis.ErrInvalidInput, name)
		}
		if dups := types.DuplicateBars(rp.Connectivity); len(dups) > 0 {
			return nil, fmt.Errorf("%w: region %q repeats bars %v", analysis.ErrInvalidInput, name, dups)
		}
		var mat femm.Material
		if mat, err = rp.material(mats); err != nil {
			return nil, fmt.Errorf("region %q: %w", name, err)
		}
		var bar *femm.Bar
		if bar, err = femm.NewBar(rp.Connectivity, rp.Area, mat); err != nil {
			return nil, fmt.Errorf("%w: region %q: %v", analysis.ErrInvalidInput, name, err)
		}
		m.Bars[name] = bar
		m.RegionNames = append(m.RegionNames, name)
		regions = append(regions, analysis.Record{"femm": bar})
	}
	if len(regions) > 0 {
		rec["regions"] = regions
	}

	if len(mp.EssentialBCs) > 0 {
		ebcs := make([]analysis.Record, len(mp.EssentialBCs))
		for i, bc := range mp.EssentialBCs {
			ebcs[i] = analysis.Record{
				"node_list":    bc.NodeList,
				"displacement": bc.Displacement,
			}
			if bc.Component != nil {
				ebcs[i]["component"] = bc.Component
			}
		}
		rec["essential_bcs"] = ebcs
	}

	if len(mp.TractionBCs) > 0 {
		tbcs := make([]analysis.Record, len(mp.TractionBCs))
		for i, tp := range mp.TractionBCs {
			var machine femm.Machine
			if machine, err = tp.machine(m.Bars); err != nil {
				return nil, fmt.Errorf("traction bc %d: %w", i, err)
			}
			tbcs[i] = analysis.Record{
				"femm":            machine,
				"traction_vector": tp.TractionVector,
			}
		}
		rec["traction_bcs"] = tbcs
	}
	if mp.TemperatureChange != nil {
		rec["temperature_change"] = analysis.Record{"temperature": *mp.TemperatureChange}
	}

	if m.Kind == types.Analysis_Modal {
		if mp.Neigvs != 0 {
			rec["neigvs"] = mp.Neigvs
		}
		rec["omega_shift"] = mp.OmegaShift
		rec["use_lumped_mass"] = mp.UseLumpedMass
	}
	m.Record = rec
	return
}

func (rp RegionParameters) material(mats femm.Materials) (m femm.Material, err error) {
	if rp.Material != "" {
		var ok bool
		if m, ok = mats[rp.Material]; !ok {
			err = fmt.Errorf("%w: material %q not in the library %v",
				analysis.ErrInvalidInput, rp.Material, mats.Names())
			return
		}
	} else {
		m.Name = rp.Name
	}
	if rp.E != nil {
		m.E = *rp.E
	}
	if rp.Rho != nil {
		m.Rho = *rp.Rho
	}
	if rp.Alpha != nil {
		m.Alpha = *rp.Alpha
	}
	if err = m.Validate(); err != nil {
		err = fmt.Errorf("%w: %v", analysis.ErrInvalidInput, err)
	}
	return
}

func (tp TractionBCParameters) machine(bars map[string]*femm.Bar) (femm.Machine, error) {
	switch {
	case tp.Region != "" && len(tp.Nodes) > 0:
		return nil, fmt.Errorf("%w: give either Region or Nodes", analysis.ErrInvalidInput)
	case tp.Region != "":
		bar, ok := bars[tp.Region]
		if !ok {
			return nil, fmt.Errorf("%w: unknown region %q", analysis.ErrInvalidInput, tp.Region)
		}
		return bar, nil
	case len(tp.Nodes) > 0:
		area := tp.Area
		if area == 0 {
			area = 1
		}
		p, err := femm.NewPointFacets(tp.Nodes, area)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", analysis.ErrInvalidInput, err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: Region or Nodes", analysis.ErrMissingCollaborator)
}

func resolve(baseDir, path string) string {
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
