// Package model builds, compiles, saves and loads volseg networks.
package model

import (
	"fmt"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/volseg/gan"
	"github.com/sugarme/volseg/unet"
)

// Kind names a network architecture.
type Kind string

const (
	KindUNet3D        Kind = "unet3d"
	KindDiscriminator Kind = "discriminator"
	KindGAN           Kind = "gan"
)

// Architecture is the serializable description of a network. Together with
// the weights file it is enough to rebuild the network.
type Architecture struct {
	Kind          Kind                     `yaml:"kind"`
	UNet          *unet.Config             `yaml:"unet,omitempty"`
	Discriminator *gan.DiscriminatorConfig `yaml:"discriminator,omitempty"`
}

// Validate checks that the sub configs a kind needs are present and valid.
func (a Architecture) Validate() error {
	switch a.Kind {
	case KindUNet3D:
		if a.UNet == nil {
			return fmt.Errorf("model: %s architecture without unet config", a.Kind)
		}
		return a.UNet.Validate()
	case KindDiscriminator:
		if a.Discriminator == nil {
			return fmt.Errorf("model: %s architecture without discriminator config", a.Kind)
		}
		return a.Discriminator.Validate()
	case KindGAN:
		if a.UNet == nil || a.Discriminator == nil {
			return fmt.Errorf("model: %s architecture needs both unet and discriminator configs", a.Kind)
		}
		if err := a.UNet.Validate(); err != nil {
			return err
		}
		return a.Discriminator.Validate()
	default:
		return fmt.Errorf("model: unknown architecture kind %q", a.Kind)
	}
}

// Network is a built model: its architecture, its variables and the module
// to forward through.
type Network struct {
	Arch   Architecture
	VS     *nn.VarStore
	Module ts.ModuleT
}

// ForwardT implements ts.ModuleT for Network.
func (n *Network) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	return n.Module.ForwardT(x, train)
}

// Build creates a network with fresh variables on device.
func Build(arch Architecture, device gotch.Device) (*Network, error) {
	if err := arch.Validate(); err != nil {
		return nil, err
	}

	vs := nn.NewVarStore(device)
	var (
		module ts.ModuleT
		err    error
	)
	switch arch.Kind {
	case KindUNet3D:
		module, err = unet.New(vs.Root(), *arch.UNet)
	case KindDiscriminator:
		module, err = gan.NewDiscriminator(vs.Root(), *arch.Discriminator)
	case KindGAN:
		module, err = gan.New(vs.Root(), *arch.UNet, *arch.Discriminator)
	}
	if err != nil {
		return nil, fmt.Errorf("model: build %s: %w", arch.Kind, err)
	}

	return &Network{
		Arch:   arch,
		VS:     vs,
		Module: module,
	}, nil
}

// SegmentArchitecture describes the default 3D U-Net for shape.
func SegmentArchitecture(shape unet.DataShape) Architecture {
	cfg := unet.DefaultConfig(shape)
	return Architecture{Kind: KindUNet3D, UNet: &cfg}
}

// DiscriminatorArchitecture describes the default discriminator.
func DiscriminatorArchitecture(numSummary int64) Architecture {
	cfg := gan.DefaultDiscriminatorConfig(numSummary)
	return Architecture{Kind: KindDiscriminator, Discriminator: &cfg}
}

// GANArchitecture describes a GAN made of the default generator and
// discriminator.
func GANArchitecture(shape unet.DataShape, numSummary int64) Architecture {
	ucfg := unet.DefaultConfig(shape)
	dcfg := gan.DefaultDiscriminatorConfig(numSummary)
	return Architecture{Kind: KindGAN, UNet: &ucfg, Discriminator: &dcfg}
}

// SegmentModel builds the 3D U-Net segmentation model for shape.
func SegmentModel(shape unet.DataShape, device gotch.Device) (*Network, error) {
	return Build(SegmentArchitecture(shape), device)
}

// Generator builds the GAN generator, which is the segmentation model.
func Generator(shape unet.DataShape, device gotch.Device) (*Network, error) {
	return SegmentModel(shape, device)
}

// Discriminator builds a standalone discriminator.
func Discriminator(numSummary int64, device gotch.Device) (*Network, error) {
	return Build(DiscriminatorArchitecture(numSummary), device)
}

// GAN builds generator and discriminator in one VarStore chained together.
func GAN(shape unet.DataShape, numSummary int64, device gotch.Device) (*Network, error) {
	return Build(GANArchitecture(shape, numSummary), device)
}
