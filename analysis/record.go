package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gofea/bcs"
	"github.com/notargets/gofea/femm"
	"github.com/notargets/gofea/field"
	"github.com/notargets/gofea/observability"
	"github.com/notargets/gofea/types"
)

/*
Record is the Model Data Exchange: the inputs of an analysis keyed by name,
augmented with its outputs. Nested records (regions, boundary conditions)
are given as Record, map[string]any or slices of either.

	static: fens, regions, essential_bcs, traction_bcs, temperature_change
	        outputs geom, u, work
	modal:  fens, regions, essential_bcs, neigvs, omega_shift, use_lumped_mass
	        outputs geom, u, nconv, W, omega, raw_eigenvalues
*/
type Record map[string]any

// Copy returns a shallow copy of the record.
func (r Record) Copy() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

type schema struct {
	keys   []string
	nested map[string]schema
}

var (
	essentialSchema = schema{keys: []string{"node_list", "displacement", "component"}}

	staticSchema = schema{
		keys: []string{"fens", "regions", "essential_bcs", "traction_bcs", "temperature_change",
			"geom", "u", "work"},
		nested: map[string]schema{
			"regions":            {keys: []string{"femm", "body_load"}},
			"essential_bcs":      essentialSchema,
			"traction_bcs":       {keys: []string{"femm", "traction_vector"}},
			"temperature_change": {keys: []string{"temperature"}},
		},
	}

	modalSchema = schema{
		keys: []string{"fens", "regions", "essential_bcs", "neigvs", "omega_shift", "use_lumped_mass",
			"geom", "u", "nconv", "W", "omega", "raw_eigenvalues"},
		nested: map[string]schema{
			"regions":       {keys: []string{"femm", "femm_stiffness", "femm_mass", "body_load"}},
			"essential_bcs": essentialSchema,
		},
	}
)

func (s schema) recognizes(key string) bool {
	for _, k := range s.keys {
		if k == key {
			return true
		}
	}
	return false
}

// check rejects unrecognized keys at every nesting level.
func (s schema) check(where string, rec map[string]any) error {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !s.recognizes(k) {
			return fmt.Errorf("%w: %q in %s", ErrUnrecognizedOption, k, where)
		}
		sub, ok := s.nested[k]
		if !ok {
			continue
		}
		recs, err := asRecords(rec[k])
		if err != nil {
			return fmt.Errorf("%s.%s: %w", where, k, err)
		}
		for i, r := range recs {
			if err = sub.check(fmt.Sprintf("%s.%s[%d]", where, k, i), r); err != nil {
				return err
			}
		}
	}
	return nil
}

func asRecords(v any) (recs []map[string]any, err error) {
	switch t := v.(type) {
	case nil:
	case Record:
		recs = []map[string]any{t}
	case map[string]any:
		recs = []map[string]any{t}
	case []Record:
		for _, r := range t {
			recs = append(recs, r)
		}
	case []map[string]any:
		recs = t
	case []any:
		for i, e := range t {
			switch r := e.(type) {
			case Record:
				recs = append(recs, r)
			case map[string]any:
				recs = append(recs, r)
			default:
				return nil, fmt.Errorf("%w: element %d is a %T, not a record", ErrInvalidInput, i, e)
			}
		}
	default:
		err = fmt.Errorf("%w: %T is not a record", ErrInvalidInput, v)
	}
	return
}

// DecodeStatic checks the record against the static schema and builds the
// typed configuration. Nothing is evaluated or called on the machines.
func DecodeStatic(rec Record) (c *Static, err error) {
	if err = staticSchema.check("static", rec); err != nil {
		return
	}
	c = &Static{}
	if c.Fens, err = toNodeSet(rec["fens"]); err != nil {
		return nil, fmt.Errorf("fens: %w", err)
	}
	if c.EssentialBCs, err = toEssentials(rec["essential_bcs"]); err != nil {
		return nil, err
	}
	regions, _ := asRecords(rec["regions"])
	for i, r := range regions {
		var reg Region
		if reg.FEMM, err = toMachine(r["femm"]); err != nil {
			return nil, fmt.Errorf("regions[%d].femm: %w", i, err)
		}
		if reg.BodyLoad, err = toValue(r["body_load"]); err != nil {
			return nil, fmt.Errorf("regions[%d].body_load: %w", i, err)
		}
		c.Regions = append(c.Regions, reg)
	}
	tractions, _ := asRecords(rec["traction_bcs"])
	for i, r := range tractions {
		var t TractionBC
		if t.FEMM, err = toMachine(r["femm"]); err != nil {
			return nil, fmt.Errorf("traction_bcs[%d].femm: %w", i, err)
		}
		if t.TractionVector, err = toValue(r["traction_vector"]); err != nil {
			return nil, fmt.Errorf("traction_bcs[%d].traction_vector: %w", i, err)
		}
		c.TractionBCs = append(c.TractionBCs, t)
	}
	if temp, _ := asRecords(rec["temperature_change"]); len(temp) > 0 {
		if len(temp) > 1 {
			return nil, fmt.Errorf("temperature_change: %w: %d records, expected one", ErrInvalidInput, len(temp))
		}
		c.TemperatureChange = &TemperatureChange{}
		if c.TemperatureChange.Temperature, err = toValue(temp[0]["temperature"]); err != nil {
			return nil, fmt.Errorf("temperature_change.temperature: %w", err)
		}
	}
	return
}

// DecodeModal checks the record against the modal schema and builds the
// typed configuration with its defaults.
func DecodeModal(rec Record) (c *Modal, err error) {
	if err = modalSchema.check("modal", rec); err != nil {
		return
	}
	c = &Modal{NEigvs: DefaultNEigvs}
	if c.Fens, err = toNodeSet(rec["fens"]); err != nil {
		return nil, fmt.Errorf("fens: %w", err)
	}
	if c.EssentialBCs, err = toEssentials(rec["essential_bcs"]); err != nil {
		return nil, err
	}
	regions, _ := asRecords(rec["regions"])
	for i, r := range regions {
		var reg Region
		for _, m := range []struct {
			key string
			dst *femm.Machine
		}{
			{"femm", &reg.FEMM},
			{"femm_stiffness", &reg.FEMMStiffness},
			{"femm_mass", &reg.FEMMMass},
		} {
			if *m.dst, err = toMachine(r[m.key]); err != nil {
				return nil, fmt.Errorf("regions[%d].%s: %w", i, m.key, err)
			}
		}
		if reg.BodyLoad, err = toValue(r["body_load"]); err != nil {
			return nil, fmt.Errorf("regions[%d].body_load: %w", i, err)
		}
		c.Regions = append(c.Regions, reg)
	}
	if v, ok := rec["neigvs"]; ok {
		if c.NEigvs, err = toInt(v); err != nil {
			return nil, fmt.Errorf("neigvs: %w", err)
		}
		if c.NEigvs <= 0 {
			return nil, fmt.Errorf("neigvs: %w: %d", ErrInvalidInput, c.NEigvs)
		}
	}
	if v, ok := rec["omega_shift"]; ok {
		if c.OmegaShift, err = toFloat(v); err != nil {
			return nil, fmt.Errorf("omega_shift: %w", err)
		}
	}
	if v, ok := rec["use_lumped_mass"]; ok {
		var lumped bool
		if lumped, ok = v.(bool); !ok {
			return nil, fmt.Errorf("use_lumped_mass: %w: %T", ErrInvalidInput, v)
		}
		c.UseLumpedMass = lumped
	}
	return
}

// RunStatic runs a linear static analysis from a record and returns a copy of
// it augmented with geom, u and work. The input record is not modified.
func RunStatic(ctx context.Context, rec Record) (out Record, err error) {
	var c *Static
	if c, err = DecodeStatic(rec); err != nil {
		observability.RecordAnalysis(kindStatic, outcome(err))
		return
	}
	var res *StaticResult
	if res, err = LinearStatic(ctx, c); err != nil {
		return
	}
	out = rec.Copy()
	out["geom"] = res.Geom
	out["u"] = res.U
	out["work"] = res.Work
	return
}

// RunModal runs a modal analysis from a record and returns a copy of it
// augmented with geom, u, nconv, W, omega and raw_eigenvalues. A shortfall
// of converged pairs shows in nconv and is not an error.
func RunModal(ctx context.Context, rec Record) (out Record, err error) {
	var c *Modal
	if c, err = DecodeModal(rec); err != nil {
		observability.RecordAnalysis(kindModal, outcome(err))
		return
	}
	var res *ModalResult
	if res, err = ModalAnalysis(ctx, c); err != nil {
		return
	}
	out = rec.Copy()
	out["geom"] = res.Geom
	out["u"] = res.U
	out["nconv"] = res.NConverged
	out["W"] = res.W
	out["omega"] = res.Omega
	out["raw_eigenvalues"] = res.RawEigenvalues
	return
}

func toEssentials(v any) (ebcs []bcs.Essential, err error) {
	recs, err := asRecords(v)
	if err != nil {
		return nil, fmt.Errorf("essential_bcs: %w", err)
	}
	for i, r := range recs {
		bc := bcs.Essential{Component: bcs.AllComponents}
		if bc.NodeList, err = toInts(r["node_list"]); err != nil {
			return nil, fmt.Errorf("essential_bcs[%d].node_list: %w", i, err)
		}
		if bc.Displacement, err = toValue(r["displacement"]); err != nil {
			return nil, fmt.Errorf("essential_bcs[%d].displacement: %w", i, err)
		}
		if bc.Component, err = toComponent(r["component"]); err != nil {
			return nil, fmt.Errorf("essential_bcs[%d].component: %w", i, err)
		}
		ebcs = append(ebcs, bc)
	}
	return
}

func toNodeSet(v any) (*field.NodeSet, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *field.NodeSet:
		return t, nil
	case [][]float64:
		ns, err := field.NewNodeSet(t)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return ns, nil
	case []any:
		xyz := make([][]float64, len(t))
		for i, row := range t {
			var err error
			if xyz[i], err = toFloats(row); err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
		}
		return toNodeSet(xyz)
	}
	return nil, fmt.Errorf("%w: %T is not a node set", ErrInvalidInput, v)
}

func toMachine(v any) (femm.Machine, error) {
	if v == nil {
		return nil, nil
	}
	if m, ok := v.(femm.Machine); ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %T is not a region machine", ErrInvalidInput, v)
}

func toValue(v any) (field.Value, error) {
	switch t := v.(type) {
	case nil:
		return field.Value{}, nil
	case field.Value:
		return t, nil
	case func([]float64) []float64:
		return field.Function(t), nil
	case []float64:
		return field.Constant(t...), nil
	case []any:
		vals, err := toFloats(t)
		if err != nil {
			return field.Value{}, err
		}
		return field.Constant(vals...), nil
	}
	f, err := toFloat(v)
	if err != nil {
		return field.Value{}, err
	}
	return field.Constant(f), nil
}

func toComponent(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return bcs.AllComponents, nil
	case string:
		c, err := types.ParseComponent(t)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return c, nil
	}
	c, err := toInt(v)
	if err != nil {
		return 0, err
	}
	if c < bcs.AllComponents {
		return 0, fmt.Errorf("%w: component %d", ErrInvalidInput, c)
	}
	return c, nil
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	}
	return 0, fmt.Errorf("%w: %T is not a number", ErrInvalidInput, v)
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t == math.Trunc(t) {
			return int(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidInput, v)
}

func toFloats(v any) ([]float64, error) {
	switch t := v.(type) {
	case []float64:
		return t, nil
	case []any:
		out := make([]float64, len(t))
		for i, e := range t {
			var err error
			if out[i], err = toFloat(e); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T is not a list of numbers", ErrInvalidInput, v)
}

func toInts(v any) ([]int, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []int:
		return t, nil
	case []any:
		out := make([]int, len(t))
		for i, e := range t {
			var err error
			if out[i], err = toInt(e); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	n, err := toInt(v)
	if err != nil {
		return nil, err
	}
	return []int{n}, nil
}
