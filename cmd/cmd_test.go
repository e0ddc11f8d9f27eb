package cmd

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeModel(t *testing.T, model string) string {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(model), 0o644))
	return path
}

func TestStaticCommand(t *testing.T) {
	path := writeModel(t, `
Title: Two bar chain
Analysis: static
Nodes: [[0], [1], [2]]
Regions:
  - Name: chain
    Connectivity: [[0, 1], [1, 2]]
    Area: 1
    E: 2
EssentialBCs:
  - NodeList: [0]
  - NodeList: [2]
    Displacement: 1
`)
	metrics := filepath.Join(t.TempDir(), "gofea.prom")
	stdout, _, err := execute("static", "-I", path, "-o", "", "--metrics-file", metrics,
		"--log-level", "warn", "--log-format", "json", "--trace=false")
	require.NoError(t, err)

	var res StaticResults
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, "Two bar chain", res.Title)
	assert.Equal(t, "static", res.Analysis)
	assert.InDelta(t, 0.5, res.Work, 1e-14)
	assert.InDelta(t, 0.5, res.Displacements[1][0], 1e-14)
	assert.InDeltaSlice(t, []float64{1, 1}, res.AxialForces["chain"], 1e-14)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gofea_analyses_total{kind="static",outcome="ok"} 1`)
	assert.Contains(t, string(data), `gofea_free_dofs{kind="static"} 1`)
}

func TestModalCommand(t *testing.T) {
	path := writeModel(t, `
Title: Clamped bar
Nodes: [[0], [1]]
Regions:
  - Connectivity: [[0, 1]]
    Area: 1
    E: 1
    Rho: 1
EssentialBCs:
  - NodeList: [0]
`)
	results := filepath.Join(t.TempDir(), "out", "results.yaml")
	_, stderr, err := execute("modal", "-I", path, "-o", results, "-n", "1", "--lumped",
		"--metrics-file=", "--log-level", "info", "--log-format", "text", "--trace")
	require.NoError(t, err)
	assert.Contains(t, stderr, "modal.eigensolve")

	data, err := os.ReadFile(results)
	require.NoError(t, err)
	var res ModalResults
	require.NoError(t, yaml.Unmarshal(data, &res))
	assert.Equal(t, "modal", res.Analysis)
	assert.Equal(t, 1, res.Requested)
	assert.Equal(t, 1, res.Converged)
	assert.InDelta(t, math.Sqrt(2), res.Omega[0], 1e-12)
	assert.InDelta(t, math.Sqrt(2)/(2*math.Pi), res.Frequencies[0], 1e-12)
	assert.InDelta(t, 2, res.RawEigenvalues[0][0], 1e-12)
	require.Len(t, res.ModeShapes, 1)
	assert.Equal(t, []float64{0}, res.ModeShapes[0][0])
	assert.InDelta(t, math.Sqrt(2), math.Abs(res.ModeShapes[0][1][0]), 1e-12)
}

func TestCommandErrors(t *testing.T) {
	reset := []string{"-o", "", "--metrics-file=", "--trace=false", "--log-level", "warn", "--log-format", "text"}

	_, _, err := execute(append([]string{"static", "-I", ""}, reset...)...)
	assert.Error(t, err)

	modal := writeModel(t, "Analysis: modal\nNodes: [[0], [1]]\n")
	_, _, err = execute(append([]string{"static", "-I", modal}, reset...)...)
	assert.Error(t, err)

	_, _, err = execute("static", "-I", modal, "--log-format", "xml")
	assert.Error(t, err)
	_, _, err = execute(append([]string{"static", "-I", modal, "--profile", "gpu"}, reset...)...)
	assert.Error(t, err)
}
