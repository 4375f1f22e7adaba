package metric

import (
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/ts"
)

// DiceEps keeps dice finite when both masks are empty.
const DiceEps = 1e-7

// DiceCoefficient measures overlap between 2 masks.
// It is differentiable and returns a scalar tensor:
//
//	2 * sum(t * p) / (sum(t) + sum(p) + eps)
//
// Ref. http://campar.in.tum.de/pub/milletari2016Vnet/milletari2016Vnet.pdf
func DiceCoefficient(yTrue, yPred *ts.Tensor) *ts.Tensor {
	// Flatten
	tflat := yTrue.MustTotype(yPred.DType(), false).MustView([]int64{-1}, true)
	pflat := yPred.MustView([]int64{-1}, false)

	tpMul := tflat.MustMul(pflat, false)
	overlap := tpMul.MustSum(yPred.DType(), true)
	tSum := tflat.MustSum(yPred.DType(), true)
	pSum := pflat.MustSum(yPred.DType(), true)

	union := tSum.MustAdd(pSum, true).MustAddScalar(ts.FloatScalar(DiceEps), true)
	pSum.MustDrop()

	dice := overlap.MustMulScalar(ts.FloatScalar(2.0), true).MustDiv(union, true)
	union.MustDrop()

	return dice
}

// DiceLoss is the negated dice coefficient. Minimizing it maximizes overlap.
func DiceLoss(yTrue, yPred *ts.Tensor) *ts.Tensor {
	return DiceCoefficient(yTrue, yPred).MustNeg(true)
}

// MeanSquaredError computes mean((yPred - yTrue)^2).
func MeanSquaredError(yTrue, yPred *ts.Tensor) *ts.Tensor {
	target := yTrue.MustTotype(yPred.DType(), false)
	// NOTE: reduction: none = 0; mean = 1; sum = 2.
	loss := yPred.MustMseLoss(target, 1, false)
	target.MustDrop()

	return loss
}

// BinaryAccuracy returns fraction of predictions that match targets after
// thresholding both at 0.5.
func BinaryAccuracy(yTrue, yPred *ts.Tensor) float64 {
	p := yPred.MustGt(ts.FloatScalar(0.5), false)
	t := yTrue.MustGt(ts.FloatScalar(0.5), false)
	eq := p.MustEqTensor(t, true)
	t.MustDrop()

	acc := eq.MustTotype(gotch.Double, true).MustMean(gotch.Double, true)
	retVal := acc.Float64Values()[0]
	acc.MustDrop()

	return retVal
}
