package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/volseg/optim"
)

// linearLoss fits y = 3x with a single linear layer and returns a closure
// computing the mean squared error.
func linearLoss(vs *nn.VarStore) func() *ts.Tensor {
	linear := nn.NewLinear(vs.Root(), 1, 1, nn.DefaultLinearConfig())
	x := ts.MustOfSlice([]float32{1, 2, 3, 4}).MustView([]int64{4, 1}, true)
	y := x.MustMulScalar(ts.FloatScalar(3), false)

	return func() *ts.Tensor {
		out := linear.Forward(x)
		loss := out.MustMseLoss(y, 1, true)
		return loss
	}
}

func TestAdadeltaDecreasesLoss(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	lossFn := linearLoss(vs)

	opt := optim.NewAdadelta(vs, optim.DefaultAdadeltaConfig())

	first := lossFn()
	initial := first.Float64Values()[0]
	first.MustDrop()

	for i := 0; i < 100; i++ {
		loss := lossFn()
		require.NoError(t, opt.BackwardStep(loss))
		loss.MustDrop()
	}

	last := lossFn()
	final := last.Float64Values()[0]
	last.MustDrop()

	assert.Less(t, final, initial)
}

func TestAdadeltaDefaults(t *testing.T) {
	cfg := optim.DefaultAdadeltaConfig()
	assert.Equal(t, 1.0, cfg.LR)
	assert.Equal(t, 0.95, cfg.Rho)
	assert.Equal(t, 1e-7, cfg.Eps)
}

func TestNew(t *testing.T) {
	for _, name := range []string{"adadelta", "Adam", "SGD"} {
		t.Run(name, func(t *testing.T) {
			vs := nn.NewVarStore(gotch.CPU)
			lossFn := linearLoss(vs)

			opt, err := optim.New(name, vs, 0)
			require.NoError(t, err)

			loss := lossFn()
			assert.NoError(t, opt.BackwardStep(loss))
			loss.MustDrop()
		})
	}

	vs := nn.NewVarStore(gotch.CPU)
	_, err := optim.New("rmsprop", vs, 0)
	assert.Error(t, err)
}

func TestAdadeltaSkipsVariablesWithoutGrad(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	lossFn := linearLoss(vs)
	unused := nn.NewLinear(vs.Root().Sub("unused"), 2, 2, nn.DefaultLinearConfig())
	before := unused.Ws.MustZerosLike(false)
	ts.NoGrad(func() {
		before.Copy_(unused.Ws)
	})

	opt := optim.NewAdadelta(vs, optim.DefaultAdadeltaConfig())
	loss := lossFn()
	require.NoError(t, opt.BackwardStep(loss))
	loss.MustDrop()

	// weight and bias of the unused layer
	assert.Equal(t, 2, opt.Skipped())
	assert.True(t, unused.Ws.MustAllclose(before, 0, 0, false, false))
}
