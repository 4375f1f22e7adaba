package base

import "github.com/sugarme/gotch/nn"

// NewSegmentationHead creates new SegmentationHead (nn.SequentialT):
// a 1x1x1 Conv3D mapping cIn channels to classes, followed by a sigmoid.
func NewSegmentationHead(p *nn.Path, cIn, classes int64) *nn.SequentialT {
	seq := nn.SeqT()
	seq.Add(Conv3d(p, cIn, classes, 1, 0, 1))
	seq.AddFn(Sigmoid())

	return seq
}
