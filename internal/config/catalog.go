// catalog.go - Step catalog loading and validation
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rfp-insight/console/internal/models"
)

//go:embed steps.yaml
var defaultCatalog []byte

type catalogFile struct {
	Steps []catalogStep `yaml:"steps"`
}

type catalogStep struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// LoadCatalog returns the ordered step template. The embedded default is
// used unless STEP_CATALOG_PATH points at an override file. A catalog must
// describe exactly the fixed pipeline steps in pipeline order; anything else
// is a configuration error.
func LoadCatalog() ([]models.Step, error) {
	data := defaultCatalog
	if path := os.Getenv("STEP_CATALOG_PATH"); path != "" {
		override, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read step catalog %s: %w", path, err)
		}
		data = override
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) ([]models.Step, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse step catalog: %w", err)
	}
	if len(file.Steps) != len(models.StepOrder) {
		return nil, fmt.Errorf("step catalog must define %d steps, got %d",
			len(models.StepOrder), len(file.Steps))
	}

	steps := make([]models.Step, len(file.Steps))
	for i, cs := range file.Steps {
		if models.StepID(cs.ID) != models.StepOrder[i] {
			return nil, fmt.Errorf("step catalog position %d: expected %q, got %q",
				i, models.StepOrder[i], cs.ID)
		}
		if cs.Title == "" {
			return nil, fmt.Errorf("step catalog %s: title is required", cs.ID)
		}
		steps[i] = models.Step{
			ID:          models.StepID(cs.ID),
			Title:       cs.Title,
			Description: cs.Description,
			Status:      models.StepStatusPending,
		}
	}
	return steps, nil
}
