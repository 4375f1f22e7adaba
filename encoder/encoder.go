package encoder

import (
	"github.com/sugarme/gotch/ts"
)

// Encoder is encoder interface for a volume segmentation model.
//
// ForwardAll returns features from the shallowest level to the deepest one.
// The last feature is the bottleneck, the others are skip connections.
type Encoder interface {
	ForwardAll(x *ts.Tensor, train bool) []*ts.Tensor
	// Channels returns output channels of each feature ForwardAll returns.
	Channels() []int64
}
