package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sugarme/volseg/model"
	"github.com/sugarme/volseg/unet"
)

func TestLoadConfigFlags(t *testing.T) {
	logger = zap.NewNop()
	require.NoError(t, rootCmd.ParseFlags([]string{"--shape", "32,32,16,1", "--dir", "out"}))
	t.Cleanup(func() {
		shape = nil
		dir = ""
	})

	require.NoError(t, loadConfig(rootCmd))
	assert.Equal(t, unet.DataShape{32, 32, 16, 1}, cfg.Shape)
	assert.Equal(t, "out", cfg.ModelDir)
}

func TestBuildAndLoad(t *testing.T) {
	out := t.TempDir()
	rootCmd.SetArgs([]string{"build", "--shape", "16,16,16,1", "--dir", out})
	require.NoError(t, rootCmd.Execute())

	net, err := model.Load(filepath.Join(out, "model.yaml"), filepath.Join(out, "weights.ot"), cfg.Device())
	require.NoError(t, err)
	assert.Equal(t, model.KindUNet3D, net.Arch.Kind)

	rootCmd.SetArgs([]string{"load", "--dir", out})
	assert.NoError(t, rootCmd.Execute())
}
