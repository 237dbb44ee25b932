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

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"jinr.ru/greenlab/go-as5047p/pkg/command"
	"jinr.ru/greenlab/go-as5047p/pkg/config"
	"jinr.ru/greenlab/go-as5047p/pkg/device"
	"jinr.ru/greenlab/go-as5047p/pkg/reg"
	"jinr.ru/greenlab/go-as5047p/pkg/srv/control"
	"jinr.ru/greenlab/go-as5047p/pkg/state"
)

// RegRW accesses the sensor directly, without the control server.
// Every method prints its result to Out and returns the error of the
// operation, if any.
type RegRW struct {
	*config.Config
	sensor    *device.Sensor
	Out       io.Writer
	readOpts  device.ReadOptions
	writeOpts device.WriteOptions
}

func NewRegRW(cfg *config.Config, out io.Writer) (*RegRW, error) {
	sensor, err := command.OpenSensor(cfg)
	if err != nil {
		return nil, err
	}
	return &RegRW{
		Config:    cfg,
		sensor:    sensor,
		Out:       out,
		readOpts:  device.ReadOptionsFrom(cfg.Sensor),
		writeOpts: device.WriteOptionsFrom(cfg.Sensor),
	}, nil
}

func (regrw *RegRW) Close() error {
	return regrw.sensor.Close()
}

func (regrw *RegRW) RegRead(name string) error {
	desc, err := reg.ByName(name)
	if err != nil {
		return err
	}
	r := regrw.sensor.ReadRegister(desc.Addr, regrw.readOpts)
	fmt.Fprintf(regrw.Out, "Register state: %s (0x%04X) = 0x%04X\n", desc.Name, desc.Addr, r.Value)
	return r.Err()
}

// RegReadAll reads every register and returns the errors of all reads
func (regrw *RegRW) RegReadAll() error {
	var info device.ErrorInfo
	for _, desc := range reg.All() {
		r := regrw.sensor.ReadRegister(desc.Addr, regrw.readOpts)
		fmt.Fprintf(regrw.Out, "Register state: %s (0x%04X) = 0x%04X\n", desc.Name, desc.Addr, r.Value)
		if !r.Ok() && info.NoError() {
			info = r.Errors
		}
	}
	return info.Err()
}

func (regrw *RegRW) RegWrite(name, value string) error {
	desc, err := reg.ByName(name)
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(value, 0, reg.PayloadBits)
	if err != nil {
		return err
	}
	r := regrw.sensor.WriteRegister(desc.Addr, uint16(v), regrw.writeOpts)
	if r.Value {
		fmt.Fprintf(regrw.Out, "Register written: %s (0x%04X) = 0x%04X\n", desc.Name, desc.Addr, v)
	}
	return r.Err()
}

func (regrw *RegRW) Angle(withDAEC, degree bool) error {
	if degree {
		r := regrw.sensor.ReadAngleDegree(withDAEC, regrw.readOpts)
		fmt.Fprintf(regrw.Out, "%.4f\n", r.Value)
		return r.Err()
	}
	r := regrw.sensor.ReadAngleRaw(withDAEC, regrw.readOpts)
	fmt.Fprintf(regrw.Out, "%d\n", r.Value)
	return r.Err()
}

func (regrw *RegRW) Magnitude() error {
	r := regrw.sensor.ReadMagnitude(regrw.readOpts)
	fmt.Fprintf(regrw.Out, "%d\n", r.Value)
	return r.Err()
}

func (regrw *RegRW) Status() error {
	st := regrw.sensor.ReadStatus(regrw.readOpts)
	fmt.Fprint(regrw.Out, st.String())
	return st.Errors.Err()
}

// Zero prints the zero position or, when value is not empty, sets it.
// The value is a raw 14-bit angle, or degrees when degree is set.
func (regrw *RegRW) Zero(value string, degree bool) error {
	if value == "" {
		r := regrw.sensor.ReadZeroPosition(regrw.readOpts)
		if degree {
			deg, _ := device.AngleToDegree(r.Value)
			fmt.Fprintf(regrw.Out, "%.4f\n", deg)
		} else {
			fmt.Fprintf(regrw.Out, "%d\n", r.Value)
		}
		return r.Err()
	}
	raw, err := parseZero(value, degree)
	if err != nil {
		return err
	}
	r, err := regrw.sensor.SetZeroPosition(raw, regrw.writeOpts)
	if err != nil {
		return err
	}
	if r.Value {
		fmt.Fprintf(regrw.Out, "Zero position set: %d\n", raw)
	}
	return r.Err()
}

func parseZero(value string, degree bool) (uint16, error) {
	if degree {
		deg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, err
		}
		return device.DegreeToAngle(deg), nil
	}
	v, err := strconv.ParseUint(value, 0, reg.PayloadBits)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// withState runs f on a control server that is never started, so that
// backup and restore share the logic of the served API
func (regrw *RegRW) withState(f func(s *control.ControlServer) error) error {
	regState, err := state.NewRegState(context.Background(), regrw.Config.DBPath, regrw.Config.Sensor.Name)
	if err != nil {
		return err
	}
	defer regState.Close()
	s, err := control.NewControlServer(context.Background(), regrw.Config, regrw.sensor, regState)
	if err != nil {
		return err
	}
	return f(s)
}

func (regrw *RegRW) printRegs(regs []state.Reg) {
	for _, r := range regs {
		desc, _ := reg.ByAddr(r.Addr)
		fmt.Fprintf(regrw.Out, "Register state: %s (0x%04X) = 0x%04X\n", desc.Name, r.Addr, r.Value)
	}
}

// Backup stores the non-volatile registers in the state database
func (regrw *RegRW) Backup() error {
	return regrw.withState(func(s *control.ControlServer) error {
		regs, info, err := s.Backup()
		if err != nil {
			return err
		}
		regrw.printRegs(regs)
		return info.Err()
	})
}

// Restore writes the registers stored by Backup to the sensor
func (regrw *RegRW) Restore() error {
	return regrw.withState(func(s *control.ControlServer) error {
		regs, r, err := s.Restore()
		if err != nil {
			return err
		}
		regrw.printRegs(regs)
		return r.Err()
	})
}
