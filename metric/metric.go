package metric

import (
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/ts"
)

// binarize thresholds x at 0.5 and returns a double tensor of 0s and 1s.
func binarize(x *ts.Tensor) *ts.Tensor {
	return x.MustGt(ts.FloatScalar(0.5), false).MustTotype(gotch.Double, true).MustView([]int64{-1}, true)
}

func sum(x *ts.Tensor) float64 {
	s := x.MustSum(gotch.Double, false)
	retVal := s.Float64Values()[0]
	s.MustDrop()
	return retVal
}

// counts returns |p ∩ t|, |p| and |t| of 2 binary masks.
func counts(pred, target *ts.Tensor) (overlap, pSum, tSum float64) {
	p := binarize(pred)
	t := binarize(target)
	pt := p.MustMul(t, false)

	overlap = sum(pt)
	pSum = sum(p)
	tSum = sum(t)

	pt.MustDrop()
	p.MustDrop()
	t.MustDrop()

	return overlap, pSum, tSum
}

// DiceCoeff computes dice score of 2 binary masks.
// Returns 1 if both masks are empty.
func DiceCoeff(pred, target *ts.Tensor) float64 {
	overlap, pSum, tSum := counts(pred, target)
	if pSum+tSum == 0 {
		return 1
	}
	return 2 * overlap / (pSum + tSum)
}

// IoU computes intersection over union of 2 binary masks.
// Returns 1 if both masks are empty.
func IoU(pred, target *ts.Tensor) float64 {
	overlap, pSum, tSum := counts(pred, target)
	union := pSum + tSum - overlap
	if union == 0 {
		return 1
	}
	return overlap / union
}

// JaccardIndex computes mean IoU over classes of integer label maps.
// Classes absent from both pred and target are skipped.
func JaccardIndex(pred, target *ts.Tensor, nclasses int64) float64 {
	var (
		total float64
		n     int
	)
	for c := int64(0); c < nclasses; c++ {
		p := pred.MustEq(ts.IntScalar(c), false).MustTotype(gotch.Double, true)
		t := target.MustEq(ts.IntScalar(c), false).MustTotype(gotch.Double, true)
		pt := p.MustMul(t, false)

		inter := sum(pt)
		union := sum(p) + sum(t) - inter

		pt.MustDrop()
		p.MustDrop()
		t.MustDrop()

		if union == 0 {
			continue
		}
		total += inter / union
		n++
	}

	if n == 0 {
		return 1
	}
	return total / float64(n)
}
