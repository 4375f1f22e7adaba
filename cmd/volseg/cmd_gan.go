package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sugarme/volseg/base"
	"github.com/sugarme/volseg/model"
)

var saveGAN bool

var ganCmd = &cobra.Command{
	Use:   "gan",
	Short: "Build generator, discriminator and GAN and print their architectures",
	RunE:  runGAN,
}

func init() {
	ganCmd.Flags().BoolVar(&saveGAN, "save", false, "Save the GAN to the model directory")
}

func runGAN(cmd *cobra.Command, args []string) error {
	device := cfg.Device()

	gen, err := model.Generator(cfg.Shape, device)
	if err != nil {
		return err
	}
	fmt.Println("Generator Architecture:")
	fmt.Println(base.Summary(gen.VS))

	dis, err := model.Discriminator(cfg.NumSummary, device)
	if err != nil {
		return err
	}
	if _, err := model.Compile(dis, model.DiscriminatorDefaults()); err != nil {
		return err
	}
	fmt.Println("Discriminator Architecture:")
	fmt.Println(base.Summary(dis.VS))

	g, err := model.GAN(cfg.Shape, cfg.NumSummary, device)
	if err != nil {
		return err
	}
	if _, err := model.Compile(g, model.GANDefaults()); err != nil {
		return err
	}
	fmt.Println("GAN Architecture:")
	fmt.Println(base.Summary(g.VS))
	logger.Info("gan built",
		zap.Stringer("shape", cfg.Shape),
		zap.Int64("numSummary", cfg.NumSummary),
		zap.Int64("params", base.TotalParams(g.VS)))

	if !saveGAN {
		return nil
	}
	modelPath, weightsPath, err := model.Save(g, cfg.ModelDir, "gan", "gan_weights")
	if err != nil {
		return err
	}
	logger.Info("gan saved", zap.String("model", modelPath), zap.String("weights", weightsPath))

	return nil
}
