package unet

import (
	"fmt"
	"reflect"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/volseg/base"
)

// DecoderLayer is one expanding step of the 3D U-Net.
type DecoderLayer struct {
	UpConv     *nn.Conv3D
	DoubleConv *nn.SequentialT
}

// interpolation using `nearest` algorithm
func upsample(x, ref *ts.Tensor) *ts.Tensor {
	xSize := x.MustSize()
	refSize := ref.MustSize()
	if reflect.DeepEqual(xSize[2:], refSize[2:]) {
		return x.MustShallowClone()
	}

	return x.MustUpsampleNearest3d(refSize[2:], nil, nil, nil, false)
}

// ForwardSkip upsamples x to the skip size, convolves it and forwards the
// concatenation [skip, up] through double conv.
func (d *DecoderLayer) ForwardSkip(x, skip *ts.Tensor, train bool) *ts.Tensor {
	up := upsample(x, skip)
	upConv := d.UpConv.ForwardT(up, train)
	up.MustDrop()

	cat := ts.MustCat([]*ts.Tensor{skip, upConv}, 1)
	upConv.MustDrop()

	res := d.DoubleConv.ForwardT(cat, train)
	cat.MustDrop()

	return res
}

// NewDecoderLayer creates a DecoderLayer.
//
// cIn: channels of the deeper feature, upOut: channels after up-convolution,
// skip: channels of the skip feature, cOut: output channels.
func NewDecoderLayer(p *nn.Path, cIn, upOut, skip, cOut int64) *DecoderLayer {
	upConv := base.Conv3dSame(p.Sub("upconv"), cIn, upOut)
	doubleConv := base.DoubleConv3d(p.Sub("conv"), skip+upOut, cOut)

	return &DecoderLayer{
		UpConv:     upConv,
		DoubleConv: doubleConv,
	}
}

// UNetDecoder is Decoder struct for UNet3D model.
type UNetDecoder struct {
	layers []*DecoderLayer
	outC   int64
}

// NewUNetDecoder creates UNetDecoder.
//
// encoderChannels are the encoder feature channels from shallow to deep;
// upFilters and decoderFilters are given from deep to shallow, one per
// skip connection.
func NewUNetDecoder(p *nn.Path, encoderChannels, upFilters, decoderFilters []int64) (*UNetDecoder, error) {
	n := len(encoderChannels) - 1
	if n < 1 {
		return nil, fmt.Errorf("unet: decoder needs at least 2 encoder features, got %d", len(encoderChannels))
	}
	if len(upFilters) != n || len(decoderFilters) != n {
		return nil, fmt.Errorf("unet: expected %d up and decoder filters, got %d and %d", n, len(upFilters), len(decoderFilters))
	}

	layers := make([]*DecoderLayer, n)
	cIn := encoderChannels[n]
	for i := 0; i < n; i++ {
		skip := encoderChannels[n-1-i]
		layers[i] = NewDecoderLayer(p.Sub(fmt.Sprintf("decoder%d", i)), cIn, upFilters[i], skip, decoderFilters[i])
		cIn = decoderFilters[i]
	}

	return &UNetDecoder{
		layers: layers,
		outC:   cIn,
	}, nil
}

// OutChannels returns number of channels of the decoder output.
func (n *UNetDecoder) OutChannels() int64 {
	return n.outC
}

// ForwardFeatures forwards through encoder features.
// It panics if the number of features does not match the decoder depth.
func (n *UNetDecoder) ForwardFeatures(features []*ts.Tensor, train bool) *ts.Tensor {
	if len(features) != len(n.layers)+1 {
		panic(fmt.Errorf("unet: expected features of %d tensors, got %d", len(n.layers)+1, len(features)))
	}

	// Default 3D U-Net with input [B 1 D H W]:
	// feat4  [B 256 D/16 H/16 W/16] (bottleneck)
	// z0     [B 256 D/8  H/8  W/8 ]
	// z1     [B 128 D/4  H/4  W/4 ]
	// z2     [B  64 D/2  H/2  W/2 ]
	// z3     [B  64 D    H    W   ]
	// The bottleneck stays owned by the caller; only decoder outputs are
	// dropped here.
	last := len(features) - 1
	z := features[last]
	for i, layer := range n.layers {
		next := layer.ForwardSkip(z, features[last-1-i], train)
		if i > 0 {
			z.MustDrop()
		}
		z = next
	}

	return z
}
