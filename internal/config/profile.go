package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ImportProfile tunes an import run. Keys missing from the YAML file keep their defaults.
type ImportProfile struct {
	BatchSize            int    `yaml:"batch_size"`
	DocumentBatchSize    int    `yaml:"document_batch_size"`
	Verify               bool   `yaml:"verify"`
	SampleEmployeeNumber int    `yaml:"sample_employee_number"`
	RiskProcedure        string `yaml:"risk_procedure"`
	EnsureSchema         bool   `yaml:"ensure_schema"`
}

func DefaultImportProfile() ImportProfile {
	return ImportProfile{
		BatchSize:            100,
		DocumentBatchSize:    100,
		Verify:               true,
		SampleEmployeeNumber: 1,
		RiskProcedure:        "calculate_attrition_risk",
		EnsureSchema:         true,
	}
}

// LoadImportProfile reads a profile from path. An empty path yields the defaults.
func LoadImportProfile(path string) (ImportProfile, error) {
	p := DefaultImportProfile()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read import profile: %w", err)
	}
	return ParseImportProfile(raw)
}

func ParseImportProfile(raw []byte) (ImportProfile, error) {
	p := DefaultImportProfile()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("failed to parse import profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p ImportProfile) Validate() error {
	if p.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", p.BatchSize)
	}
	if p.DocumentBatchSize <= 0 {
		return fmt.Errorf("document_batch_size must be positive, got %d", p.DocumentBatchSize)
	}
	return nil
}
