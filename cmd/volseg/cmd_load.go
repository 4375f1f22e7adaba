package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sugarme/volseg/base"
	"github.com/sugarme/volseg/model"
)

var (
	modelPath   string
	weightsPath string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a saved model and print its summary",
	Long: `Loads an architecture file and its weights. Paths default to
<dir>/model.yaml and <dir>/weights.ot.`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&modelPath, "model", "", "Architecture file path")
	loadCmd.Flags().StringVar(&weightsPath, "weights", "", "Weights file path")
}

func runLoad(cmd *cobra.Command, args []string) error {
	mp, wp := cfg.Paths()
	if modelPath != "" {
		mp = modelPath
	}
	if weightsPath != "" {
		wp = weightsPath
	}

	net, err := model.Load(mp, wp, cfg.Device())
	if err != nil {
		return err
	}
	logger.Info("model loaded",
		zap.String("kind", string(net.Arch.Kind)),
		zap.String("model", mp),
		zap.String("weights", wp),
		zap.Int64("params", base.TotalParams(net.VS)))
	fmt.Println(base.Summary(net.VS))

	return nil
}
