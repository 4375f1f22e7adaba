package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sugarme/gotch"
	"gopkg.in/yaml.v3"
)

// Default save locations.
const (
	DefaultDir         = "Data/Model/"
	DefaultModelName   = "model"
	DefaultWeightsName = "weights"

	ModelExt   = ".yaml"
	WeightsExt = ".ot"
)

var (
	ErrModelNotFound   = errors.New("model file not exists")
	ErrWeightsNotFound = errors.New("weights file not exists")
)

// Paths returns model and weights file paths inside dir.
func Paths(dir, modelName, weightsName string) (modelPath, weightsPath string) {
	return filepath.Join(dir, modelName+ModelExt), filepath.Join(dir, weightsName+WeightsExt)
}

// Save writes the architecture to <dir>/<modelName>.yaml and the weights to
// <dir>/<weightsName>.ot. dir is created if it does not exist.
func Save(net *Network, dir, modelName, weightsName string) (modelPath, weightsPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("model: create %s: %w", dir, err)
	}
	modelPath, weightsPath = Paths(dir, modelName, weightsName)

	data, err := yaml.Marshal(net.Arch)
	if err != nil {
		return "", "", fmt.Errorf("model: encode architecture: %w", err)
	}
	if err := os.WriteFile(modelPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("model: write %s: %w", modelPath, err)
	}
	if err := net.VS.Save(weightsPath); err != nil {
		return "", "", fmt.Errorf("model: save weights %s: %w", weightsPath, err)
	}

	return modelPath, weightsPath, nil
}

// ReadArchitecture decodes an architecture file.
func ReadArchitecture(modelPath string) (Architecture, error) {
	var arch Architecture
	data, err := os.ReadFile(modelPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return arch, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return arch, fmt.Errorf("model: read %s: %w", modelPath, err)
	}
	if err := yaml.Unmarshal(data, &arch); err != nil {
		return arch, fmt.Errorf("model: decode %s: %w", modelPath, err)
	}
	return arch, nil
}

// Load rebuilds the network described by modelPath on device and loads its
// weights from weightsPath.
func Load(modelPath, weightsPath string, device gotch.Device) (*Network, error) {
	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("model: stat %s: %w", modelPath, err)
	}
	if _, err := os.Stat(weightsPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrWeightsNotFound, weightsPath)
		}
		return nil, fmt.Errorf("model: stat %s: %w", weightsPath, err)
	}

	arch, err := ReadArchitecture(modelPath)
	if err != nil {
		return nil, err
	}
	net, err := Build(arch, device)
	if err != nil {
		return nil, err
	}
	if err := net.VS.Load(weightsPath); err != nil {
		return nil, fmt.Errorf("model: load weights %s: %w", weightsPath, err)
	}

	return net, nil
}
