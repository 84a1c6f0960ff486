// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"io"
	"os"
	"path/filepath"

	"go.chromium.org/luci/common/errors"
	"gopkg.in/yaml.v3"

	"github.com/riannucci/rcharchive/rch/rchdata"
)

// configEnvVar names a config file to use when --config isn't given.
const configEnvVar = "RCH_CONFIG"

// Config holds the defaults for command line flags. Flags given explicitly
// always win over the config file.
type Config struct {
	// Encoding is an encoding id or name, see rchdata.ParseEncoding.
	Encoding      string `yaml:"encoding"`
	Level         int    `yaml:"level"`
	StdinFilename string `yaml:"stdin_filename"`
	Force         bool   `yaml:"force"`
	Verbose       bool   `yaml:"verbose"`
}

func defaultConfig() *Config {
	return &Config{
		Encoding:      rchdata.EncodingBZip2.String(),
		Level:         rchdata.DefaultLevel,
		StdinFilename: "stdin",
	}
}

// LoadConfig reads a YAML config from r on top of the defaults. A nil or empty
// r yields the defaults.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := defaultConfig()
	if r == nil {
		return cfg, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Annotate(err, "reading config").Err()
	}
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Annotate(err, "parsing config").Err()
	}
	return cfg, cfg.validate()
}

// LoadConfigFile reads the config at path. If the file doesn't exist and
// required is false, the defaults are returned.
func LoadConfigFile(path string, required bool) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return LoadConfig(nil)
		}
		return nil, errors.Annotate(err, "opening config").Err()
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, errors.Annotate(err, "config %q", path).Err()
	}
	return cfg, nil
}

// configPath picks the config file: the --config flag, then $RCH_CONFIG, then
// rch/config.yaml under the user config dir. Only the first two are required
// to exist.
func configPath(flag string) (path string, required bool) {
	if flag != "" {
		return flag, true
	}
	if env := os.Getenv(configEnvVar); env != "" {
		return env, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "rch", "config.yaml"), false
}

func (c *Config) validate() error {
	enc, err := c.encoding()
	if err != nil {
		return err
	}
	return enc.ValidLevel(c.Level)
}

func (c *Config) encoding() (rchdata.Encoding, error) {
	return rchdata.ParseEncoding(c.Encoding)
}
