package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sugarme/volseg/base"
	"github.com/sugarme/volseg/model"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the segmentation model and save it",
	Long: `Builds the 3D U-Net for the configured data shape, compiles it with the
configured optimizer and loss, prints its summary and saves architecture and
weights to the model directory.

Example:
  volseg build --shape 512,512,16,1 --dir Data/Model/`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	net, err := model.SegmentModel(cfg.Shape, cfg.Device())
	if err != nil {
		return err
	}
	if _, err := model.Compile(net, cfg.Compile); err != nil {
		return err
	}
	logger.Info("segment model built",
		zap.Stringer("shape", cfg.Shape),
		zap.Int64("params", base.TotalParams(net.VS)),
		zap.String("optimizer", cfg.Compile.Optimizer),
		zap.String("loss", cfg.Compile.Loss))
	fmt.Println(base.Summary(net.VS))

	modelPath, weightsPath, err := model.Save(net, cfg.ModelDir, cfg.ModelName, cfg.WeightsName)
	if err != nil {
		return err
	}
	logger.Info("model and weights saved",
		zap.String("model", modelPath),
		zap.String("weights", weightsPath))

	return nil
}
