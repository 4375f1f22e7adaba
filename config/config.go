// Package config holds volseg CLI settings loaded from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/sugarme/gotch"
	"gopkg.in/yaml.v3"

	"github.com/sugarme/volseg/model"
	"github.com/sugarme/volseg/unet"
)

// Config is the volseg configuration.
type Config struct {
	ModelDir    string         `yaml:"modelDir"`
	ModelName   string         `yaml:"modelName"`
	WeightsName string         `yaml:"weightsName"`
	Cuda        bool           `yaml:"cuda"`
	Shape       unet.DataShape `yaml:"shape"`
	NumSummary  int64          `yaml:"numSummary"`
	// Compile options of the segmentation model.
	Compile model.CompileOptions `yaml:"compile"`
}

// Default returns a Config that saves a (512, 512, 16, 1) segmentation model
// to Data/Model/.
func Default() Config {
	return Config{
		ModelDir:    model.DefaultDir,
		ModelName:   model.DefaultModelName,
		WeightsName: model.DefaultWeightsName,
		Shape:       unet.DataShape{512, 512, 16, 1},
		NumSummary:  128,
		Compile:     model.SegmentDefaults(),
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Device returns CUDA if requested and available, CPU otherwise.
func (c Config) Device() gotch.Device {
	if c.Cuda {
		return gotch.NewCuda().CudaIfAvailable()
	}
	return gotch.CPU
}

// Paths returns model and weights file paths.
func (c Config) Paths() (modelPath, weightsPath string) {
	return model.Paths(c.ModelDir, c.ModelName, c.WeightsName)
}
