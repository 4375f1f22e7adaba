package unet

import (
	"errors"
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/volseg/base"
	"github.com/sugarme/volseg/encoder"
)

// ErrInvalidShape is returned when a data shape cannot be fed to the model.
var ErrInvalidShape = errors.New("invalid data shape")

// DataShape is a channels-last volume shape: (d1, d2, d3, channels).
// E.g. (512, 512, 16, 1).
type DataShape [4]int64

// Channels returns the last dimension.
func (s DataShape) Channels() int64 {
	return s[3]
}

// Spatial returns the 3 spatial dimensions.
func (s DataShape) Spatial() []int64 {
	return []int64{s[0], s[1], s[2]}
}

// Tensor returns the channels-first input shape for a batch: [B C d1 d2 d3].
func (s DataShape) Tensor(batchSize int64) []int64 {
	return []int64{batchSize, s[3], s[0], s[1], s[2]}
}

// Validate checks that every spatial dimension survives `levels` poolings
// without remainder.
func (s DataShape) Validate(levels int) error {
	for i, d := range s {
		if d <= 0 {
			return fmt.Errorf("%w: dimension %d of %v is not positive", ErrInvalidShape, i, s)
		}
	}
	div := int64(1) << uint(levels)
	for i, d := range s.Spatial() {
		if d%div != 0 {
			return fmt.Errorf("%w: spatial dimension %d (%d) of %v is not divisible by %d", ErrInvalidShape, i, d, s, div)
		}
	}
	return nil
}

func (s DataShape) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", s[0], s[1], s[2], s[3])
}

// Config holds UNet3D hyper parameters.
type Config struct {
	Shape DataShape `yaml:"shape"`
	// Encoder filters from shallow to deep. The last one is the bottleneck.
	Filters []int64 `yaml:"filters"`
	// Up-convolution filters from deep to shallow.
	UpFilters []int64 `yaml:"upFilters"`
	// Decoder double conv filters from deep to shallow.
	DecoderFilters []int64 `yaml:"decoderFilters"`
}

// DefaultConfig creates Config with default 3D U-Net filters.
func DefaultConfig(shape DataShape) Config {
	return Config{
		Shape:          shape,
		Filters:        append([]int64(nil), encoder.DefaultFilters...),
		UpFilters:      []int64{512, 256, 128, 32},
		DecoderFilters: []int64{256, 128, 64, 64},
	}
}

// Levels returns number of down sampling steps.
func (c Config) Levels() int {
	return len(c.Filters) - 1
}

// Validate checks filters lengths and data shape.
func (c Config) Validate() error {
	if len(c.Filters) < 2 {
		return fmt.Errorf("unet: expected at least 2 encoder filters, got %d", len(c.Filters))
	}
	n := c.Levels()
	if len(c.UpFilters) != n || len(c.DecoderFilters) != n {
		return fmt.Errorf("unet: expected %d up and decoder filters, got %d and %d", n, len(c.UpFilters), len(c.DecoderFilters))
	}
	for _, fs := range [][]int64{c.Filters, c.UpFilters, c.DecoderFilters} {
		for _, f := range fs {
			if f <= 0 {
				return fmt.Errorf("unet: filters must be positive, got %v", fs)
			}
		}
	}

	return c.Shape.Validate(n)
}

// UNet3D is a volumetric UNet model.
// Ref: https://arxiv.org/abs/1606.06650
type UNet3D struct {
	config  Config
	encoder encoder.Encoder
	decoder *UNetDecoder
	segHead *nn.SequentialT
}

// ForwardT implements ts.ModuleT for UNet3D struct.
//
// x should have shape [B C d1 d2 d3]; output has the same shape and holds
// sigmoid probabilities.
func (n *UNet3D) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	features := n.encoder.ForwardAll(x, train)
	out := n.decoder.ForwardFeatures(features, train)
	masks := n.segHead.ForwardT(out, train)

	for _, f := range features {
		f.MustDrop()
	}
	out.MustDrop()

	return masks
}

// Config returns the model configuration.
func (n *UNet3D) Config() Config {
	return n.config
}

// New creates UNet3D. Output channels equal input channels.
func New(p *nn.Path, cfg Config) (*UNet3D, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	enc := encoder.NewConv3DEncoder(p.Sub("encoder"), cfg.Shape.Channels(), cfg.Filters)
	dec, err := NewUNetDecoder(p.Sub("decoder"), enc.Channels(), cfg.UpFilters, cfg.DecoderFilters)
	if err != nil {
		return nil, err
	}
	head := base.NewSegmentationHead(p.Sub("logit"), dec.OutChannels(), cfg.Shape.Channels())

	return &UNet3D{
		config:  cfg,
		encoder: enc,
		decoder: dec,
		segHead: head,
	}, nil
}

// DefaultUNet3D creates UNet3D with default filters.
func DefaultUNet3D(p *nn.Path, shape DataShape) (*UNet3D, error) {
	return New(p, DefaultConfig(shape))
}
