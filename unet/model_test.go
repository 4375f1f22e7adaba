package unet_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/volseg/unet"
)

func TestDataShapeValidate(t *testing.T) {
	tests := []struct {
		name  string
		shape unet.DataShape
		ok    bool
	}{
		{"default", unet.DataShape{512, 512, 16, 1}, true},
		{"small", unet.DataShape{16, 16, 16, 2}, true},
		{"not divisible", unet.DataShape{512, 512, 12, 1}, false},
		{"zero channels", unet.DataShape{16, 16, 16, 0}, false},
		{"negative", unet.DataShape{-16, 16, 16, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate(4)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, unet.ErrInvalidShape), "got %v", err)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := unet.DefaultConfig(unet.DataShape{16, 16, 16, 1})
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Levels())

	cfg.UpFilters = cfg.UpFilters[:3]
	assert.Error(t, cfg.Validate())

	// fewer levels relax the divisibility constraint
	cfg = unet.Config{
		Shape:          unet.DataShape{4, 4, 4, 1},
		Filters:        []int64{4, 8, 8},
		UpFilters:      []int64{8, 4},
		DecoderFilters: []int64{8, 4},
	}
	assert.NoError(t, cfg.Validate())
}

func TestNewUNet3D(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	net, err := unet.DefaultUNet3D(vs.Root(), unet.DataShape{16, 16, 16, 1})
	require.NoError(t, err)

	image := ts.MustRand([]int64{2, 1, 16, 16, 16}, gotch.Float, gotch.CPU)
	defer image.MustDrop()

	ts.NoGrad(func() {
		masks := net.ForwardT(image, false)
		defer masks.MustDrop()

		assert.Equal(t, []int64{2, 1, 16, 16, 16}, masks.MustSize())

		min := masks.MustMin(false).Float64Values()[0]
		max := masks.MustMax(false).Float64Values()[0]
		assert.GreaterOrEqual(t, min, 0.0)
		assert.LessOrEqual(t, max, 1.0)
	})
}

func TestUNet3DMultiChannel(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	cfg := unet.Config{
		Shape:          unet.DataShape{8, 8, 4, 3},
		Filters:        []int64{4, 8, 8},
		UpFilters:      []int64{8, 4},
		DecoderFilters: []int64{8, 4},
	}
	net, err := unet.New(vs.Root(), cfg)
	require.NoError(t, err)

	image := ts.MustRand(cfg.Shape.Tensor(1), gotch.Float, gotch.CPU)
	defer image.MustDrop()

	ts.NoGrad(func() {
		masks := net.ForwardT(image, false)
		defer masks.MustDrop()
		assert.Equal(t, []int64{1, 3, 8, 8, 4}, masks.MustSize())
	})
}

func TestNewInvalidShape(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	_, err := unet.DefaultUNet3D(vs.Root(), unet.DataShape{10, 16, 16, 1})
	assert.True(t, errors.Is(err, unet.ErrInvalidShape))
}

func TestNewUNetDecoderFilters(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	_, err := unet.NewUNetDecoder(vs.Root(), []int64{4, 8, 8}, []int64{8}, []int64{8, 4})
	assert.Error(t, err)

	_, err = unet.NewUNetDecoder(vs.Root(), []int64{4}, nil, nil)
	assert.Error(t, err)

	dec, err := unet.NewUNetDecoder(vs.Root(), []int64{4, 8, 8}, []int64{8, 4}, []int64{8, 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), dec.OutChannels())
}

func TestUNet3DBackwardReachesEveryLevel(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	cfg := unet.Config{
		Shape:          unet.DataShape{8, 8, 8, 1},
		Filters:        []int64{4, 8, 8},
		UpFilters:      []int64{8, 4},
		DecoderFilters: []int64{8, 4},
	}
	net, err := unet.New(vs.Root(), cfg)
	require.NoError(t, err)

	image := ts.MustRand(cfg.Shape.Tensor(1), gotch.Float, gotch.CPU)
	masks := net.ForwardT(image, true)
	loss := masks.MustMean(gotch.Float, true)
	loss.MustBackward()

	vars := vs.Variables()
	for _, name := range []string{
		"encoder.level0.conv1.conv.weight",
		"encoder.level2.conv1.conv.weight",
		"encoder.level2.conv2.conv.weight",
		"decoder.decoder0.upconv.weight",
		"logit.weight",
	} {
		v, ok := vars[name]
		require.True(t, ok, "missing variable %v", name)
		assert.True(t, v.MustGrad(false).MustDefined(), "no gradient for %v", name)
	}
}
