package qparams

import (
	"os"

	"gopkg.in/yaml.v3"
)

// FileDefaults is the subset of Parameters a "-config" YAML file may
// supply as defaults: the file supplies defaults, and any flag present
// later on the commandline overrides it.
type FileDefaults struct {
	N        *int64   `yaml:"n"`
	Lambda   *float64 `yaml:"lambda"`
	Mu       *float64 `yaml:"mu"`
	Rate     *float64 `yaml:"r"`
	B        *int64   `yaml:"b"`
	P        *int64   `yaml:"p"`
	TSFile   *string  `yaml:"tsfile"`
	LogLevel *string  `yaml:"log_level"`
}

// LoadYAMLDefaults reads a FileDefaults document from path.
func LoadYAMLDefaults(path string) (*FileDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fd FileDefaults
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return nil, err
	}
	return &fd, nil
}

// Apply overwrites the corresponding field of p for every value fd
// sets, used to seed Defaults() before a ParseArgs pass so that
// explicit commandline flags still take precedence.
func (fd *FileDefaults) Apply(p *Parameters) {
	if fd == nil {
		return
	}
	if fd.N != nil {
		p.N = *fd.N
	}
	if fd.Lambda != nil {
		p.Lambda = *fd.Lambda
	}
	if fd.Mu != nil {
		p.Mu = *fd.Mu
	}
	if fd.Rate != nil {
		p.Rate = *fd.Rate
	}
	if fd.B != nil {
		p.B = *fd.B
	}
	if fd.P != nil {
		p.P = *fd.P
	}
	if fd.TSFile != nil {
		p.TSFile = *fd.TSFile
	}
	if fd.LogLevel != nil {
		p.LogLevel = *fd.LogLevel
	}
	p.convert()
}
