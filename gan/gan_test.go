package gan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/volseg/gan"
	"github.com/sugarme/volseg/unet"
)

func TestDiscriminator(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	dis, err := gan.NewDiscriminator(vs.Root(), gan.DefaultDiscriminatorConfig(8))
	require.NoError(t, err)
	assert.Equal(t, int64(16), dis.InputSize())

	x := ts.MustRand([]int64{3, 16}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	for _, train := range []bool{true, false} {
		out := dis.ForwardT(x, train)
		assert.Equal(t, []int64{3, 1}, out.MustSize())
		vals := out.Float64Values()
		for _, v := range vals {
			assert.True(t, v > 0 && v < 1, "got %v", v)
		}
		out.MustDrop()
	}
}

func TestDiscriminatorConfigValidate(t *testing.T) {
	cfg := gan.DefaultDiscriminatorConfig(0)
	assert.Error(t, cfg.Validate())

	cfg = gan.DefaultDiscriminatorConfig(4)
	cfg.Dropout = 1
	assert.Error(t, cfg.Validate())

	cfg.Dropout = 0
	vs := nn.NewVarStore(gotch.CPU)
	_, err := gan.NewDiscriminator(vs.Root(), cfg)
	assert.NoError(t, err)
}

func TestSummarize(t *testing.T) {
	volume := ts.MustOnes([]int64{2, 1, 4, 4, 4}, gotch.Float, gotch.CPU)
	seg := ts.MustZeros([]int64{2, 1, 4, 4, 4}, gotch.Float, gotch.CPU)

	pair := gan.Summarize(volume, seg, 8)
	assert.Equal(t, []int64{2, 16}, pair.MustSize())

	vals := pair.Float64Values()
	assert.InDelta(t, 1.0, vals[0], 1e-6)
	assert.InDelta(t, 0.0, vals[8], 1e-6)
}

func TestGAN(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	shape := unet.DataShape{16, 16, 16, 1}
	g, err := gan.NewGAN(vs.Root(), shape, 32)
	require.NoError(t, err)

	x := ts.MustRand(shape.Tensor(1), gotch.Float, gotch.CPU)
	defer x.MustDrop()

	ts.NoGrad(func() {
		out := g.ForwardT(x, false)
		assert.Equal(t, []int64{1, 1}, out.MustSize())
		out.MustDrop()

		seg := g.Generate(x, false)
		assert.Equal(t, shape.Tensor(1), seg.MustSize())
		seg.MustDrop()
	})
}

func TestDiscriminatorNoDropoutBackward(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	cfg := gan.DefaultDiscriminatorConfig(4)
	cfg.Dropout = 0
	dis, err := gan.NewDiscriminator(vs.Root(), cfg)
	require.NoError(t, err)

	x := ts.MustRand([]int64{2, 8}, gotch.Float, gotch.CPU)
	out := dis.ForwardT(x, true)
	loss := out.MustMean(gotch.Float, true)
	loss.MustBackward()

	for name, v := range vs.Variables() {
		assert.True(t, v.MustGrad(false).MustDefined(), "no gradient for %v", name)
	}
}
