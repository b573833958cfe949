package configs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/flacheck/flacheck/pkg/audio/analysis"
)

// LoadThresholdsFromFile loads classifier threshold overrides from a YAML
// or JSON file. Fields absent from the file keep the calibrated defaults.
func LoadThresholdsFromFile(filePath string) (analysis.Thresholds, error) {
	thresholds := analysis.DefaultThresholds()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return thresholds, fmt.Errorf("thresholds file does not exist: %s", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return thresholds, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	switch filepath.Ext(filePath) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &thresholds)
	case ".json":
		err = json.Unmarshal(data, &thresholds)
	default:
		// Try YAML first, then JSON
		if yamlErr := yaml.Unmarshal(data, &thresholds); yamlErr != nil {
			err = json.Unmarshal(data, &thresholds)
		}
	}

	if err != nil {
		return analysis.DefaultThresholds(), fmt.Errorf("failed to parse thresholds file %s: %w", filePath, err)
	}

	return thresholds, nil
}
