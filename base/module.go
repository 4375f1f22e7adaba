package base

import (
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

// Identity is a nn.ModuleT placeholder.
// It forwards the input tensor as such and keeps it in the autograd graph.
type Identity struct{}

// Forward implement nn.Module for Identity struct
func (i *Identity) Forward(x *ts.Tensor) *ts.Tensor {
	return x.MustShallowClone()
}

// ForwardT implement nn.ModuleT for Identity struct.
func (i *Identity) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	return x.MustShallowClone()
}

// NewIdentity creates a new Identity struct.
func NewIdentity() *Identity {
	return &Identity{}
}

// Relu returns a ReLU activation func to be added to a SequentialT.
func Relu() nn.Func {
	return nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustRelu(false)
	})
}

// Sigmoid returns a sigmoid activation func to be added to a SequentialT.
func Sigmoid() nn.Func {
	return nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustSigmoid(false)
	})
}

// Conv3d creates Conv3D module.
func Conv3d(p *nn.Path, cIn, cOut, ksize, padding, stride int64) *nn.Conv3D {
	config := nn.DefaultConv3DConfig()
	config.Stride = []int64{stride, stride, stride}
	config.Padding = []int64{padding, padding, padding}

	return nn.NewConv3D(p, cIn, cOut, ksize, config)
}

// Conv3dSame creates a 3x3x3 Conv3D with stride 1 that keeps spatial size.
func Conv3dSame(p *nn.Path, cIn, cOut int64) *nn.Conv3D {
	return Conv3d(p, cIn, cOut, 3, 1, 1)
}

// Conv3dRelu creates a SequentialT composing of a 'same' Conv3D and a ReLU activation.
func Conv3dRelu(p *nn.Path, cIn, cOut int64) *nn.SequentialT {
	seq := nn.SeqT()
	seq.Add(Conv3dSame(p.Sub("conv"), cIn, cOut))
	seq.AddFn(Relu())

	return seq
}

// DoubleConv3d creates 2 consecutive Conv3dRelu layers.
// [conv3d => relu] x 2
func DoubleConv3d(p *nn.Path, cIn, cOut int64) *nn.SequentialT {
	seq := nn.SeqT()
	seq.Add(Conv3dRelu(p.Sub("conv1"), cIn, cOut))
	seq.Add(Conv3dRelu(p.Sub("conv2"), cOut, cOut))

	return seq
}

// MaxPool3d down samples each spatial dimension by half.
// ksize = 2; stride=2; padding=0; dilation=1; ceil=false
func MaxPool3d() nn.Func {
	return nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustMaxPool3d([]int64{2, 2, 2}, []int64{2, 2, 2}, []int64{0, 0, 0}, []int64{1, 1, 1}, false, false)
	})
}
