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
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPersistLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", ConfigFile)
	cfg := NewDefaultConfig()
	cfg.SetPath(path)
	cfg.Spi.SpeedHz = 1000000
	cfg.Sensor.VerifyWrittenReg = false
	cfg.Api.Port = 9000
	if err := cfg.Persist(false); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	err := cfg.Persist(false)
	var exists ErrConfigFileExists
	if !errors.As(err, &exists) {
		t.Errorf("Persist() over an existing file error = %v, want ErrConfigFileExists", err)
	}
	if err := cfg.Persist(true); err != nil {
		t.Errorf("Persist(overwrite) error = %v", err)
	}

	loaded := NewDefaultConfig()
	loaded.SetPath(path)
	if err := loaded.LoadConfig(); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Spi.SpeedHz != 1000000 || loaded.Sensor.VerifyWrittenReg || loaded.Api.Port != 9000 {
		t.Errorf("LoadConfig() = %+v %+v %+v", loaded.Spi, loaded.Sensor, loaded.Api)
	}
	if !loaded.Sensor.VerifyParity {
		t.Errorf("LoadConfig() lost VerifyParity")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetPath(filepath.Join(t.TempDir(), "missing"))
	if err := cfg.LoadConfig(); !os.IsNotExist(err) {
		t.Errorf("LoadConfig() error = %v, want not exist", err)
	}
	if err := cfg.Load(); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
	if cfg.Api.Port != DefaultApiPort {
		t.Errorf("Load() changed defaults: port %d", cfg.Api.Port)
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	if err := os.WriteFile(path, []byte("spi: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	cfg.SetPath(path)
	if err := cfg.Load(); err == nil {
		t.Errorf("Load() of a malformed file succeeded")
	}
}

func TestAddresses(t *testing.T) {
	tests := []struct {
		spi  SpiConfig
		want string
	}{
		{spi: SpiConfig{Bus: 0, ChipSelect: 1}, want: "SPI0.1"},
		{spi: SpiConfig{Port: "/dev/spidev1.0", Bus: 0}, want: "/dev/spidev1.0"},
	}
	for _, tt := range tests {
		if got := tt.spi.PortName(); got != tt.want {
			t.Errorf("PortName() = %s, want %s", got, tt.want)
		}
	}
	api := ApiConfig{Address: "0.0.0.0", Port: 8047}
	if got := api.Addr(); got != "0.0.0.0:8047" {
		t.Errorf("Addr() = %s", got)
	}
}
