package auditrec

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed records.yaml
var recordsYAML []byte

type fixture struct {
	Records []Record `yaml:"records"`
}

// Load parses a record fixture. Tests substitute their own documents.
func Load(data []byte) ([]Record, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse audit fixture: %w", err)
	}
	if len(f.Records) == 0 {
		return nil, fmt.Errorf("audit fixture is empty")
	}
	return f.Records, nil
}

var (
	defaultOnce sync.Once
	defaultSvc  *Service
	defaultErr  error
)

// Default returns the service backed by the embedded demo table.
func Default() (*Service, error) {
	defaultOnce.Do(func() {
		records, err := Load(recordsYAML)
		if err != nil {
			defaultErr = err
			return
		}
		defaultSvc = NewService(records)
	})
	return defaultSvc, defaultErr
}
