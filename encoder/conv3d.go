package encoder

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/volseg/base"
)

// DefaultFilters are the encoder filters of the 3D U-Net: four pooled
// levels and a bottleneck.
var DefaultFilters = []int64{32, 64, 128, 256, 256}

// Conv3DEncoder is a plain convolutional encoder.
//
// level0: [conv3d => relu] x 2
// levelN: maxpool3d => [conv3d => relu] x 2
type Conv3DEncoder struct {
	layers   []ts.ModuleT
	channels []int64
}

// ForwardAll implements Encoder interface for Conv3DEncoder.
func (e *Conv3DEncoder) ForwardAll(x *ts.Tensor, train bool) []*ts.Tensor {
	features := make([]*ts.Tensor, 0, len(e.layers))
	in := x
	for _, layer := range e.layers {
		out := layer.ForwardT(in, train)
		features = append(features, out)
		in = out
	}

	return features
}

// Channels implements Encoder interface for Conv3DEncoder.
func (e *Conv3DEncoder) Channels() []int64 {
	return e.channels
}

// NewConv3DEncoder creates an encoder with len(filters) levels.
func NewConv3DEncoder(p *nn.Path, cIn int64, filters []int64) *Conv3DEncoder {
	layers := make([]ts.ModuleT, len(filters))
	c := cIn
	for i, f := range filters {
		lp := p.Sub(fmt.Sprintf("level%d", i))
		if i == 0 {
			layers[i] = base.DoubleConv3d(lp, c, f)
		} else {
			layers[i] = down(lp, c, f)
		}
		c = f
	}

	channels := make([]int64, len(filters))
	copy(channels, filters)

	return &Conv3DEncoder{
		layers:   layers,
		channels: channels,
	}
}

// down is a SequentialT composed of maxpool and 2x conv.
func down(p *nn.Path, cIn, cOut int64) ts.ModuleT {
	seq := nn.SeqT()
	// Down sample to half size: [B C D H W] => [B C D/2 H/2 W/2]
	seq.AddFn(base.MaxPool3d())
	seq.Add(base.DoubleConv3d(p, cIn, cOut))

	return seq
}
