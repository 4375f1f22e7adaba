package gan

import (
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/volseg/unet"
)

// NewGenerator creates the segmentation generator: a default UNet3D.
func NewGenerator(p *nn.Path, shape unet.DataShape) (*unet.UNet3D, error) {
	return unet.DefaultUNet3D(p, shape)
}

// Summarize reduces volume and seg to numSummary averaged features each and
// concatenates them: [B 2*numSummary].
//
// Both tensors are flattened per sample and adaptive-average pooled, so
// numSummary may exceed the number of voxels (values are repeated).
func Summarize(volume, seg *ts.Tensor, numSummary int64) *ts.Tensor {
	v := summary(volume, numSummary)
	s := summary(seg, numSummary)
	res := ts.MustCat([]*ts.Tensor{v, s}, 1)
	v.MustDrop()
	s.MustDrop()

	return res
}

// summary: [B ...] => [B 1 1 N] => [B 1 1 numSummary] => [B numSummary]
func summary(x *ts.Tensor, numSummary int64) *ts.Tensor {
	batchSize := x.MustSize()[0]
	flat := x.MustView([]int64{batchSize, 1, 1, -1}, false)
	pooled := flat.MustAdaptiveAvgPool2d([]int64{1, numSummary}, true)

	return pooled.MustView([]int64{batchSize, numSummary}, true)
}

// GAN chains the generator and the discriminator:
// x => G(x) => Summarize(x, G(x)) => D => [B 1]
type GAN struct {
	Generator     *unet.UNet3D
	Discriminator *Discriminator
}

// ForwardT implements ts.ModuleT for GAN.
func (g *GAN) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	seg := g.Generator.ForwardT(x, train)
	pair := Summarize(x, seg, g.Discriminator.Config().NumSummary)
	seg.MustDrop()
	out := g.Discriminator.ForwardT(pair, train)
	pair.MustDrop()

	return out
}

// Generate forwards x through the generator only.
func (g *GAN) Generate(x *ts.Tensor, train bool) *ts.Tensor {
	return g.Generator.ForwardT(x, train)
}

// NewGAN creates GAN with default generator and discriminator.
func NewGAN(p *nn.Path, shape unet.DataShape, numSummary int64) (*GAN, error) {
	return New(p, unet.DefaultConfig(shape), DefaultDiscriminatorConfig(numSummary))
}

// New creates GAN with generator at p/generator and discriminator at
// p/discriminator.
func New(p *nn.Path, genCfg unet.Config, disCfg DiscriminatorConfig) (*GAN, error) {
	gen, err := unet.New(p.Sub("generator"), genCfg)
	if err != nil {
		return nil, err
	}
	dis, err := NewDiscriminator(p.Sub("discriminator"), disCfg)
	if err != nil {
		return nil, err
	}

	return &GAN{
		Generator:     gen,
		Discriminator: dis,
	}, nil
}
