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

package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"jinr.ru/greenlab/go-as5047p/pkg/config"
	"jinr.ru/greenlab/go-as5047p/pkg/device"
	"jinr.ru/greenlab/go-as5047p/pkg/device/sim"
	"jinr.ru/greenlab/go-as5047p/pkg/log"
	"jinr.ru/greenlab/go-as5047p/pkg/srv/control"
	"jinr.ru/greenlab/go-as5047p/pkg/state"
	"jinr.ru/greenlab/go-as5047p/pkg/transport"
)

// NewTransport returns the simulator or the SPI port of cfg, traced
func NewTransport(cfg *config.Config) transport.Transport {
	var t transport.Transport
	if cfg.Spi.Simulate {
		log.Info("Using simulated sensor")
		t = sim.New()
	} else {
		t = transport.NewSpiTransport(cfg.Spi)
	}
	return transport.NewTraceTransport(t, cfg.Sensor.Name)
}

// OpenSensor initializes the bus and checks the sensor answers
func OpenSensor(cfg *config.Config) (*device.Sensor, error) {
	sensor := device.NewSensor(NewTransport(cfg), cfg.Sensor.Name)
	if err := sensor.Init(); err != nil {
		sensor.Close()
		return nil, err
	}
	return sensor, nil
}

// StartControlServer serves the sensor until SIGINT or SIGTERM
func StartControlServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sensor, err := OpenSensor(cfg)
	if err != nil {
		return err
	}
	regState, err := state.NewRegState(ctx, cfg.DBPath, cfg.Sensor.Name)
	if err != nil {
		sensor.Close()
		return err
	}

	s, err := control.NewControlServer(ctx, cfg, sensor, regState)
	if err != nil {
		sensor.Close()
		regState.Close()
		return err
	}
	return s.Run()
}
