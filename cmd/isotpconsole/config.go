// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vectorlane/isotp"
)

// SessionProfile is the on-disk (YAML) description of one ISO-TP session:
// which wire-format variant, which serial adapter to drive, and the static
// session configuration (padding, index domain, FC defaults).
type SessionProfile struct {
	Format   string `yaml:"format"`
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baudRate"`

	Padding     bool   `yaml:"padding"`
	PaddingByte byte   `yaml:"paddingByte"`
	BlockSize   uint8  `yaml:"blockSize"`
	SeparationUs uint32 `yaml:"separationMicros"`

	IndexFirst uint8 `yaml:"indexFirst"`
	IndexStart uint8 `yaml:"indexStart"`
	IndexEnd   uint8 `yaml:"indexEnd"`
}

// LoadSessionProfile reads and parses a YAML session profile from path.
func LoadSessionProfile(path string) (*SessionProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session profile %s: %w", path, err)
	}
	p := &SessionProfile{
		BaudRate:   115200,
		IndexEnd:   15,
		PaddingByte: 0xFF,
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing session profile %s: %w", path, err)
	}
	return p, nil
}

// WireFormat resolves the profile's format name to an isotp.Format.
func (p *SessionProfile) WireFormat() (isotp.Format, error) {
	switch p.Format {
	case "", "classic":
		return isotp.Classic, nil
	case "fd":
		return isotp.FD, nil
	case "lin":
		return isotp.LIN, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want classic, fd, or lin)", p.Format)
	}
}

// Options translates the profile into isotp.Session construction options.
func (p *SessionProfile) Options() []isotp.Option {
	opts := []isotp.Option{
		isotp.WithConsecutiveIndexDomain(p.IndexFirst, p.IndexStart, p.IndexEnd),
		isotp.WithBlockSize(p.BlockSize),
		isotp.WithSeparationTimeMicros(p.SeparationUs),
	}
	if p.Padding {
		opts = append(opts, isotp.WithPadding(p.PaddingByte))
	} else {
		opts = append(opts, isotp.WithoutPadding())
	}
	return opts
}

// frameBudget returns the per-frame byte budget for this profile's format.
func (p *SessionProfile) frameBudget() int {
	f, err := p.WireFormat()
	if err != nil {
		return 8
	}
	if f == isotp.FD {
		return 64
	}
	return 8
}
