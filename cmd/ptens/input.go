// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/ptens/atoms"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/matrix"
	"github.com/katalvlaran/ptens/ptensors"
	"github.com/katalvlaran/ptens/ragged"
	"github.com/katalvlaran/ptens/session"
)

var inputValidate = validator.New()

// packFile is the YAML form of a pack:
//
//	channels: 2
//	fill: sequential        # raw, zero, gaussian, sequential
//	sigma: 1
//	domains: [[0, 1, 2, 3], [4, 5, 6]]
//	data:                   # optional, one row per atom occurrence
//	  - [1, 2]
type packFile struct {
	Channels int         `yaml:"channels" validate:"gte=0,lte=65536"`
	Fill     string      `yaml:"fill" validate:"omitempty,oneof=raw zero gaussian sequential"`
	Sigma    float64     `yaml:"sigma" validate:"gte=0"`
	Domains  [][]int     `yaml:"domains" validate:"dive,dive,gte=0"`
	Data     [][]float64 `yaml:"data"`
}

func readPackFile(path string) (*packFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf packFile
	if err = yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err = inputValidate.Struct(&pf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &pf, nil
}

// domains returns the index domains of the file.
func (pf *packFile) domains() (*atoms.Pack, error) {
	return atoms.FromSlices(pf.Domains)
}

// build constructs the pack on dev, from explicit data when present.
func (pf *packFile) build(s *session.Session, dev device.Device) (*ptensors.Pack1, error) {
	a, err := pf.domains()
	if err != nil {
		return nil, err
	}
	if len(pf.Data) > 0 {
		m, err := matrix.FromRows(pf.Data)
		if err != nil {
			return nil, err
		}
		if m.Cols() != pf.Channels && pf.Channels != 0 {
			return nil, fmt.Errorf("data has %d columns, channels is %d: %w", m.Cols(), pf.Channels, ragged.ErrChannelMismatch)
		}
		return ptensors.FromMatrix(s, m, a, dev)
	}
	name := pf.Fill
	if name == "" {
		name = "zero"
	}
	fill, err := ragged.ParseFill(name, pf.Sigma)
	if err != nil {
		return nil, err
	}

	return ptensors.New(s, a, pf.Channels, fill, dev)
}

func loadPack(s *session.Session, path string, dev device.Device) (*ptensors.Pack1, error) {
	pf, err := readPackFile(path)
	if err != nil {
		return nil, err
	}
	return pf.build(s, dev)
}
