package eventservices

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
)

func LoadParityConfigYAML(path string) (*eventmodels.ParityConfigYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadParityConfigYAML: failed to read %s: %w", path, err)
	}

	return ParseParityConfigYAML(data)
}

func ParseParityConfigYAML(data []byte) (*eventmodels.ParityConfigYAML, error) {
	var config eventmodels.ParityConfigYAML
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("ParseParityConfigYAML: failed to unmarshal: %w", err)
	}

	for _, s := range config.Symbols {
		if s.Symbol == "" {
			return nil, fmt.Errorf("ParseParityConfigYAML: symbol entry without a symbol")
		}

		if _, err := s.ToParityConfig(); err != nil {
			return nil, fmt.Errorf("ParseParityConfigYAML: %w", err)
		}
	}

	return &config, nil
}
