package pulley

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCartesianParams reads and validates a Cartesian parameter set from
// a YAML file. Keys are the lowercased parameter names (rab, rbc, rcd,
// d, h).
func LoadCartesianParams(path string) (CartesianParams, error) {
	var p CartesianParams
	if err := loadYAML(path, &p); err != nil {
		return CartesianParams{}, err
	}
	if err := p.Validate(); err != nil {
		return CartesianParams{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// LoadPolarParams reads and validates a polar parameter set from a YAML
// file. Keys are the lowercased parameter names (rab, rbc, rcd, b, h,
// pld, teeth, pd).
func LoadPolarParams(path string) (PolarParams, error) {
	var p PolarParams
	if err := loadYAML(path, &p); err != nil {
		return PolarParams{}, err
	}
	if err := p.Validate(); err != nil {
		return PolarParams{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func loadYAML(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading parameter file: %w", err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parsing parameter file %s: %w", path, err)
	}
	return nil
}
