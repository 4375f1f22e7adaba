package optim

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

// AdadeltaConfig holds Adadelta hyper parameters.
type AdadeltaConfig struct {
	LR  float64
	Rho float64
	Eps float64
}

// DefaultAdadeltaConfig creates AdadeltaConfig with lr=1.0, rho=0.95, eps=1e-7.
func DefaultAdadeltaConfig() AdadeltaConfig {
	return AdadeltaConfig{
		LR:  1.0,
		Rho: 0.95,
		Eps: 1e-7,
	}
}

// Adadelta implements the adaptive learning rate method of Zeiler.
// Ref. https://arxiv.org/abs/1212.5701
//
//	accGrad  = rho*accGrad + (1-rho)*g^2
//	delta    = g * sqrt(accDelta + eps) / sqrt(accGrad + eps)
//	accDelta = rho*accDelta + (1-rho)*delta^2
//	w        = w - lr*delta
type Adadelta struct {
	config   AdadeltaConfig
	vars     []*ts.Tensor
	accGrad  []*ts.Tensor
	accDelta []*ts.Tensor
	skipped  int
}

// NewAdadelta creates Adadelta for all trainable variables of vs.
func NewAdadelta(vs *nn.VarStore, config AdadeltaConfig) *Adadelta {
	vars := vs.TrainableVariables()
	accGrad := make([]*ts.Tensor, len(vars))
	accDelta := make([]*ts.Tensor, len(vars))
	ts.NoGrad(func() {
		for i, v := range vars {
			accGrad[i] = v.MustZerosLike(false)
			accDelta[i] = v.MustZerosLike(false)
		}
	})

	return &Adadelta{
		config:   config,
		vars:     vars,
		accGrad:  accGrad,
		accDelta: accDelta,
	}
}

// Config returns optimizer hyper parameters.
func (o *Adadelta) Config() AdadeltaConfig {
	return o.config
}

// Skipped returns number of variables the last Step left untouched because
// they had no gradient.
func (o *Adadelta) Skipped() int {
	return o.skipped
}

// ZeroGrad zeroes gradients of all variables.
func (o *Adadelta) ZeroGrad() error {
	for _, v := range o.vars {
		v.ZeroGrad()
	}
	return nil
}

// Step applies one update using current gradients.
func (o *Adadelta) Step() error {
	rho := o.config.Rho
	eps := ts.FloatScalar(o.config.Eps)
	o.skipped = 0

	ts.NoGrad(func() {
		for i, v := range o.vars {
			// Variables outside the loss graph have no gradient yet.
			g := v.MustGrad(false)
			if !g.MustDefined() {
				g.MustDrop()
				o.skipped++
				continue
			}

			// accGrad = rho*accGrad + (1-rho)*g^2
			g2 := g.MustMul(g, false).MustMulScalar(ts.FloatScalar(1-rho), true)
			acc := o.accGrad[i].MustMulScalar(ts.FloatScalar(rho), false).MustAdd(g2, true)
			g2.MustDrop()
			o.accGrad[i].Copy_(acc)

			// delta = g * sqrt(accDelta + eps) / sqrt(accGrad + eps)
			std := acc.MustAddScalar(eps, true).MustSqrt(true)
			rms := o.accDelta[i].MustAddScalar(eps, false).MustSqrt(true)
			delta := g.MustMul(rms, false).MustDiv(std, true)
			rms.MustDrop()
			std.MustDrop()

			// accDelta = rho*accDelta + (1-rho)*delta^2
			d2 := delta.MustMul(delta, false).MustMulScalar(ts.FloatScalar(1-rho), true)
			accD := o.accDelta[i].MustMulScalar(ts.FloatScalar(rho), false).MustAdd(d2, true)
			d2.MustDrop()
			o.accDelta[i].Copy_(accD)
			accD.MustDrop()

			// w = w - lr*delta
			upd := delta.MustMulScalar(ts.FloatScalar(o.config.LR), true)
			w := v.MustSub(upd, false)
			upd.MustDrop()
			v.Copy_(w)
			w.MustDrop()
			g.MustDrop()
		}
	})

	return nil
}

// BackwardStep zeroes gradients, back-propagates loss and applies a step.
func (o *Adadelta) BackwardStep(loss *ts.Tensor) error {
	if err := o.ZeroGrad(); err != nil {
		return err
	}
	if err := loss.Backward(); err != nil {
		return fmt.Errorf("adadelta: backward: %w", err)
	}
	return o.Step()
}
