package femm

import (
	"fmt"
	"sort"

	"gopkg.in/ini.v1"
)

// Material is an isotropic linear elastic material with thermal expansion.
type Material struct {
	Name  string
	E     float64 // Young's modulus
	Rho   float64 // mass density
	Alpha float64 // coefficient of thermal expansion
}

func (m Material) Validate() error {
	if m.E <= 0 {
		return fmt.Errorf("material %q: Young's modulus must be positive, got %g", m.Name, m.E)
	}
	if m.Rho < 0 {
		return fmt.Errorf("material %q: negative density %g", m.Name, m.Rho)
	}
	return nil
}

// Materials is a named material library.
type Materials map[string]Material

// LoadMaterials reads a material library from an INI file, one section per
// material:
//
//	[steel]
//	E = 200e9
//	Rho = 7850
//	Alpha = 1.2e-5
func LoadMaterials(path string) (mats Materials, err error) {
	var file *ini.File
	if file, err = ini.Load(path); err != nil {
		return nil, fmt.Errorf("material library %s: %w", path, err)
	}
	return parseMaterials(file)
}

// ParseMaterials reads a material library from INI data.
func ParseMaterials(data []byte) (Materials, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("material library: %w", err)
	}
	return parseMaterials(file)
}

func parseMaterials(file *ini.File) (mats Materials, err error) {
	mats = make(Materials)
	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		var E float64
		if E, err = sec.Key("E").Float64(); err != nil {
			return nil, fmt.Errorf("material %q: E: %w", sec.Name(), err)
		}
		m := Material{
			Name:  sec.Name(),
			E:     E,
			Rho:   sec.Key("Rho").MustFloat64(0),
			Alpha: sec.Key("Alpha").MustFloat64(0),
		}
		if err = m.Validate(); err != nil {
			return nil, err
		}
		mats[m.Name] = m
	}
	return
}

// Names returns the material names in sorted order.
func (mats Materials) Names() (names []string) {
	for name := range mats {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}
