/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// SpiConfig describes the bus session of the sensor: which port, which
// select line and how fast. Port overrides Bus/ChipSelect when set.
type SpiConfig struct {
	Port       string `json:"port,omitempty"`
	Bus        int    `json:"bus"`
	ChipSelect int    `json:"chipSelect"`
	SpeedHz    int64  `json:"speedHz"`
	Simulate   bool   `json:"simulate"`
}

// PortName returns the periph port name, e.g. SPI0.1
func (c *SpiConfig) PortName() string {
	if c.Port != "" {
		return c.Port
	}
	return fmt.Sprintf("SPI%d.%d", c.Bus, c.ChipSelect)
}

// SensorConfig holds the default checks done on every register access
type SensorConfig struct {
	Name                string `json:"name"`
	VerifyParity        bool   `json:"verifyParity"`
	CheckForComError    bool   `json:"checkForComError"`
	CheckForSensorError bool   `json:"checkForSensorError"`
	VerifyWrittenReg    bool   `json:"verifyWrittenReg"`
}

type ApiConfig struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// Addr returns host:port of the control server
func (c *ApiConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

type Config struct {
	Spi      *SpiConfig    `json:"spi"`
	Sensor   *SensorConfig `json:"sensor"`
	Api      *ApiConfig    `json:"api"`
	DBPath   string        `json:"dbPath"`
	LogLevel string        `json:"logLevel"`
	filepath string
}

// ErrConfigFileExists returned by Persist when the file is there and overwrite is not allowed
type ErrConfigFileExists struct {
	Path string
}

func (e ErrConfigFileExists) Error() string {
	return fmt.Sprintf("Config file already exists: %s", e.Path)
}

// Path returns the file the config is loaded from and persisted to
func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// LoadConfig reads the config file over the current values
func (c *Config) LoadConfig() error {
	data, err := os.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", c.filepath, err)
	}
	return nil
}

// Load is LoadConfig that keeps the defaults when there is no config file yet
func (c *Config) Load() error {
	err := c.LoadConfig()
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir)
}

func DefaultConfigPath() string {
	return filepath.Join(defaultDir(), ConfigFile)
}

func DefaultDBPath() string {
	return filepath.Join(defaultDir(), DBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		Spi: &SpiConfig{
			Bus:        DefaultSpiBus,
			ChipSelect: DefaultSpiChipSelect,
			SpeedHz:    DefaultSpiSpeedHz,
		},
		Sensor: &SensorConfig{
			Name:                DefaultSensorName,
			VerifyParity:        true,
			CheckForComError:    true,
			CheckForSensorError: true,
			VerifyWrittenReg:    true,
		},
		Api: &ApiConfig{
			Address: DefaultApiAddress,
			Port:    DefaultApiPort,
		},
		DBPath:   DefaultDBPath(),
		LogLevel: DefaultLogLevel,
		filepath: DefaultConfigPath(),
	}
}
