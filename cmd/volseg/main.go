// Command volseg builds, saves and inspects 3D U-Net segmentation and GAN
// models.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sugarme/volseg/config"
	"github.com/sugarme/volseg/unet"
)

var (
	// Flags
	cfgPath string
	verbose bool
	cuda    bool
	dir     string
	shape   []int64

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "volseg",
	Short: "Volumetric segmentation models (3D U-Net, GAN)",
	Long: `volseg assembles a 3D U-Net for volumetric medical-image segmentation and
a generator/discriminator GAN around it, and saves or loads them as an
architecture file plus a weights file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// loadConfig reads the config file if any, then applies flags set on the
// command line.
func loadConfig(cmd *cobra.Command) error {
	cfg = config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger.Debug("config loaded", zap.String("path", cfgPath))
	}

	flags := cmd.Flags()
	if flags.Changed("cuda") {
		cfg.Cuda = cuda
	}
	if flags.Changed("dir") {
		cfg.ModelDir = dir
	}
	if flags.Changed("shape") {
		if len(shape) != 4 {
			return fmt.Errorf("--shape expects 4 values (d1,d2,d3,channels), got %v", shape)
		}
		cfg.Shape = unet.DataShape{shape[0], shape[1], shape[2], shape[3]}
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "YAML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&cuda, "cuda", false, "Use CUDA if available")
	pf.StringVarP(&dir, "dir", "d", "", "Model directory (default Data/Model/)")
	pf.Int64SliceVar(&shape, "shape", nil, "Channels-last data shape: d1,d2,d3,channels (default 512,512,16,1)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(ganCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
