package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/ts"
	"go.uber.org/zap"

	"github.com/sugarme/volseg/model"
)

var batchSize int64

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Forward a random batch through the segmentation model",
	Long: `Builds the segmentation model for the configured shape and forwards a
random batch without gradient, reporting output shape and elapsed time.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Int64VarP(&batchSize, "batch", "b", 1, "Batch size")
}

func runCheck(cmd *cobra.Command, args []string) error {
	device := cfg.Device()
	net, err := model.SegmentModel(cfg.Shape, device)
	if err != nil {
		return err
	}

	image := ts.MustRand(cfg.Shape.Tensor(batchSize), gotch.Float, device)
	defer image.MustDrop()

	start := time.Now()
	ts.NoGrad(func() {
		masks := net.ForwardT(image, false)
		logger.Info("forward done",
			zap.Int64s("input", image.MustSize()),
			zap.Int64s("output", masks.MustSize()),
			zap.Duration("took", time.Since(start)))
		masks.MustDrop()
	})

	return nil
}
