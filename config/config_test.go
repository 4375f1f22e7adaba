package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"

	"github.com/sugarme/volseg/config"
	"github.com/sugarme/volseg/unet"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, unet.DataShape{512, 512, 16, 1}, cfg.Shape)
	assert.Equal(t, "adadelta", cfg.Compile.Optimizer)
	assert.Equal(t, "dice", cfg.Compile.Loss)
	assert.Equal(t, gotch.CPU, cfg.Device())

	modelPath, weightsPath := cfg.Paths()
	assert.Equal(t, filepath.Join("Data", "Model", "model.yaml"), modelPath)
	assert.Equal(t, filepath.Join("Data", "Model", "weights.ot"), weightsPath)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volseg.yaml")
	data := []byte(`
modelDir: out
shape: [64, 64, 32, 2]
compile:
  optimizer: adam
  lr: 0.0001
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.ModelDir)
	assert.Equal(t, "model", cfg.ModelName)
	assert.Equal(t, unet.DataShape{64, 64, 32, 2}, cfg.Shape)
	assert.Equal(t, "adam", cfg.Compile.Optimizer)
	assert.Equal(t, 0.0001, cfg.Compile.LR)
}

func TestLoadMissing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
