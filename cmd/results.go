package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/InputParameters"
	"github.com/notargets/gofea/analysis"
	"github.com/notargets/gofea/field"
	"github.com/notargets/gofea/types"
)

type StaticResults struct {
	Title         string               `json:"Title,omitempty"`
	Analysis      string               `json:"Analysis"`
	Work          float64              `json:"Work"`
	Displacements [][]float64          `json:"Displacements"`
	AxialForces   map[string][]float64 `json:"AxialForces,omitempty"`
}

type ModalResults struct {
	Title          string        `json:"Title,omitempty"`
	Analysis       string        `json:"Analysis"`
	Requested      int           `json:"Requested"`
	Converged      int           `json:"Converged"`
	Omega          []float64     `json:"Omega"`
	Frequencies    []float64     `json:"Frequencies"` // Hz
	RawEigenvalues [][2]float64  `json:"RawEigenvalues"`
	ModeShapes     [][][]float64 `json:"ModeShapes,omitempty"`
}

// readModel parses the model file and checks it is meant for kind. A model
// without an Analysis entry takes the kind of the command.
func readModel(path string, kind types.AnalysisKind) (mp *InputParameters.ModelParameters, err error) {
	if path == "" {
		return nil, fmt.Errorf("must supply a model file (-I, --inputFile), for example:%s", exampleFile)
	}
	if mp, err = InputParameters.ReadModelFile(path); err != nil {
		return
	}
	if mp.Analysis == "" {
		mp.Analysis = kind.String()
	}
	var k types.AnalysisKind
	if k, err = types.NewAnalysisKind(mp.Analysis); err != nil {
		return
	}
	if k != kind {
		return nil, fmt.Errorf("%s is a %s model, not a %s one", path, k, kind)
	}
	if log.IsLevelEnabled(log.DebugLevel) {
		mp.Print()
	}
	return
}

const exampleFile = `
########################################
Title: "Clamped bar"
Analysis: static
Nodes: [[0], [1]]
Regions:
  - Name: bar
    Connectivity: [[0, 1]]
    Area: 1.e-4
    E: 200.e9
    Rho: 7850
EssentialBCs:
  - NodeList: [0]
TractionBCs:
  - Nodes: [1]
    TractionVector: [1000]
########################################
`

func nodeValues(u *field.Field) (vals [][]float64) {
	vals = make([][]float64, u.NNodes())
	for n := range vals {
		vals[n] = u.NodeValues(n)
	}
	return
}

func newStaticResults(mp *InputParameters.ModelParameters, m *InputParameters.Model, out analysis.Record) (
	res *StaticResults, err error) {
	u := out["u"].(*field.Field)
	res = &StaticResults{
		Title:         m.Title,
		Analysis:      m.Kind.String(),
		Work:          out["work"].(float64),
		Displacements: nodeValues(u),
		AxialForces:   make(map[string][]float64, len(m.RegionNames)),
	}
	var dT *field.Field
	if mp.TemperatureChange != nil {
		dT = field.FromValue("dT", u.Nodes(), field.Constant(*mp.TemperatureChange))
	}
	for _, name := range m.RegionNames {
		if res.AxialForces[name], err = m.Bars[name].AxialForces(u, dT); err != nil {
			return nil, fmt.Errorf("region %q: %w", name, err)
		}
	}
	return
}

func newModalResults(m *InputParameters.Model, out analysis.Record, requested int) (res *ModalResults, err error) {
	var (
		u     = out["u"].(*field.Field)
		W     = out["W"].(*mat.Dense)
		omega = out["omega"].([]float64)
		raw   = out["raw_eigenvalues"].([]complex128)
	)
	res = &ModalResults{
		Title:          m.Title,
		Analysis:       m.Kind.String(),
		Requested:      requested,
		Converged:      out["nconv"].(int),
		Omega:          omega,
		Frequencies:    make([]float64, len(omega)),
		RawEigenvalues: make([][2]float64, len(raw)),
	}
	for i, w := range omega {
		res.Frequencies[i] = w / (2 * math.Pi)
	}
	for i, l := range raw {
		res.RawEigenvalues[i] = [2]float64{real(l), imag(l)}
	}
	for k := 0; k < res.Converged; k++ {
		var shape *field.Field
		if shape, err = analysis.ScatterMode(u, W, k); err != nil {
			return nil, err
		}
		res.ModeShapes = append(res.ModeShapes, nodeValues(shape))
	}
	return
}

// writeResults writes v as YAML to path, or to w when path is empty.
func writeResults(w io.Writer, path string, v any) (err error) {
	var data []byte
	if data, err = yaml.Marshal(v); err != nil {
		return
	}
	if path == "" {
		_, err = w.Write(data)
		return
	}
	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return
		}
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return
	}
	log.WithField("file", path).Info("results written")
	return
}
