package directory

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed merchants.yaml
var merchantsYAML []byte

type fixture struct {
	Merchants []Merchant `yaml:"merchants"`
}

// Load parses a merchant fixture. Tests pass their own documents to
// substitute data without touching control logic.
func Load(data []byte) ([]Merchant, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse merchant fixture: %w", err)
	}
	if len(f.Merchants) == 0 {
		return nil, fmt.Errorf("merchant fixture is empty")
	}
	return f.Merchants, nil
}

var (
	defaultOnce sync.Once
	defaultSvc  *Service
	defaultErr  error
)

// Default returns the service backed by the embedded demo directory. The
// fixture is parsed once; subsequent calls share the same instance.
func Default() (*Service, error) {
	defaultOnce.Do(func() {
		merchants, err := Load(merchantsYAML)
		if err != nil {
			defaultErr = err
			return
		}
		defaultSvc = NewService(merchants)
	})
	return defaultSvc, defaultErr
}
