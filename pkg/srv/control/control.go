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

package control

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"jinr.ru/greenlab/go-as5047p/pkg/config"
	"jinr.ru/greenlab/go-as5047p/pkg/device"
	deviceifc "jinr.ru/greenlab/go-as5047p/pkg/device/ifc"
	"jinr.ru/greenlab/go-as5047p/pkg/log"
	"jinr.ru/greenlab/go-as5047p/pkg/reg"
	"jinr.ru/greenlab/go-as5047p/pkg/srv/control/ifc"
	"jinr.ru/greenlab/go-as5047p/pkg/state"
)

// ErrNotWritable returned for writes to read-only registers
type ErrNotWritable struct {
	Name string
}

func (e ErrNotWritable) Error() string {
	return fmt.Sprintf("Register is read-only: %s", e.Name)
}

// ErrNoBackup returned by Restore when nothing was backed up
type ErrNoBackup struct {
	Name string
}

func (e ErrNoBackup) Error() string {
	return fmt.Sprintf("No register backup for sensor: %s", e.Name)
}

// ControlServer serializes all access to one sensor. The sensor itself has
// no locking, every bus transaction goes through mu.
type ControlServer struct {
	context.Context
	*config.Config
	mu        sync.Mutex
	sensor    deviceifc.Sensor
	state     *state.RegState
	api       ifc.ApiServer
	readOpts  device.ReadOptions
	writeOpts device.WriteOptions
}

var _ ifc.ControlServer = &ControlServer{}

// NewControlServer ...
func NewControlServer(ctx context.Context, cfg *config.Config, sensor deviceifc.Sensor, regState *state.RegState) (*ControlServer, error) {
	log.Debug("Initializing control server for sensor %s", sensor.GetName())

	s := &ControlServer{
		Context:   ctx,
		Config:    cfg,
		sensor:    sensor,
		state:     regState,
		readOpts:  device.ReadOptionsFrom(cfg.Sensor),
		writeOpts: device.WriteOptionsFrom(cfg.Sensor),
	}

	apiServer, err := NewApiServer(ctx, cfg, s)
	if err != nil {
		return nil, err
	}
	s.api = apiServer

	return s, nil
}

func (s *ControlServer) Run() error {
	defer s.sensor.Close()
	if s.state != nil {
		defer s.state.Close()
	}
	return s.api.Run()
}

func (s *ControlServer) Handler() http.Handler {
	return s.api.Handler()
}

func (s *ControlServer) GetName() string {
	return s.sensor.GetName()
}

func (s *ControlServer) observe(op string, start time.Time, info device.ErrorInfo) {
	Operations.WithLabelValues(s.GetName(), op).Inc()
	OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	countFaults(s.GetName(), info)
}

// cache stores a value read from the sensor. Failures are only logged.
func (s *ControlServer) cache(addr, value uint16) {
	if s.state == nil {
		return
	}
	if err := s.state.SetReg(state.Reg{Addr: addr, Value: value}, s.GetName()); err != nil {
		log.Warning("Failed to cache register 0x%04X: %s", addr, err)
	}
}

func (s *ControlServer) ReadAngle(withDAEC bool) device.Result[uint16] {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	r := s.sensor.ReadAngleRaw(withDAEC, s.readOpts)
	s.observe("angle", start, r.Errors)
	if r.Ok() {
		deg, _ := device.AngleToDegree(r.Value)
		AngleDegrees.WithLabelValues(s.GetName()).Set(deg)
		addr := reg.ANGLEUNC
		if withDAEC {
			addr = reg.ANGLECOM
		}
		s.cache(addr, r.Value)
	}
	return r
}

func (s *ControlServer) ReadMagnitude() device.Result[uint16] {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	r := s.sensor.ReadMagnitude(s.readOpts)
	s.observe("magnitude", start, r.Errors)
	if r.Ok() {
		Magnitude.WithLabelValues(s.GetName()).Set(float64(r.Value))
		s.cache(reg.MAG, r.Value)
	}
	return r
}

func (s *ControlServer) ReadStatus() device.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	st := s.sensor.ReadStatus(s.readOpts)
	s.observe("status", start, st.Errors)
	if st.Ok() {
		AGC.WithLabelValues(s.GetName()).Set(float64(st.DIAAGC.AGC))
		Magnitude.WithLabelValues(s.GetName()).Set(float64(st.MAG.CMAG))
	}
	return st
}

func (s *ControlServer) regRead(desc reg.RegDesc) device.Result[uint16] {
	start := time.Now()
	r := s.sensor.ReadRegister(desc.Addr, s.readOpts)
	s.observe("read", start, r.Errors)
	if r.Ok() {
		s.cache(desc.Addr, r.Value)
	}
	return r
}

func (s *ControlServer) RegRead(desc reg.RegDesc) device.Result[uint16] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regRead(desc)
}

func (s *ControlServer) RegReadAll() []ifc.RegReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	var readings []ifc.RegReading
	for _, desc := range reg.All() {
		readings = append(readings, ifc.RegReading{Reg: desc, Result: s.regRead(desc)})
	}
	return readings
}

func (s *ControlServer) RegWrite(desc reg.RegDesc, value uint16) (device.Result[bool], error) {
	if !desc.Writable() {
		return device.Result[bool]{}, ErrNotWritable{Name: desc.Name}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	r := s.sensor.WriteRegister(desc.Addr, value, s.writeOpts)
	s.observe("write", start, r.Errors)
	if r.Value {
		s.cache(desc.Addr, value&desc.Mask)
	}
	return r, nil
}

func (s *ControlServer) RegCached() ([]state.Reg, error) {
	if s.state == nil {
		return nil, nil
	}
	return s.state.GetRegAll(s.GetName())
}

func (s *ControlServer) Backup() ([]state.Reg, device.ErrorInfo, error) {
	nv := reg.NonVolatile()
	s.mu.Lock()
	start := time.Now()
	r, err := s.sensor.ReadConsecutive(nv[0].Addr, len(nv), s.readOpts)
	s.observe("backup", start, r.Errors)
	s.mu.Unlock()
	if err != nil {
		return nil, r.Errors, err
	}
	if !r.Ok() {
		return nil, r.Errors, nil
	}

	regs := make([]state.Reg, len(nv))
	for i, desc := range nv {
		regs[i] = state.Reg{Addr: desc.Addr, Value: r.Value[i]}
	}
	if s.state == nil {
		return regs, r.Errors, nil
	}
	if err := s.state.Backup(regs, s.GetName()); err != nil {
		return nil, r.Errors, err
	}
	log.Info("Backed up %d registers of %s", len(regs), s.GetName())
	return regs, r.Errors, nil
}

// Restore writes the backup back in address order and stops at the first
// register that fails
func (s *ControlServer) Restore() ([]state.Reg, device.Result[bool], error) {
	if s.state == nil {
		return nil, device.Result[bool]{}, ErrNoBackup{Name: s.GetName()}
	}
	regs, err := s.state.Restore(s.GetName())
	if err != nil {
		return nil, device.Result[bool]{}, err
	}
	if len(regs) == 0 {
		return nil, device.Result[bool]{}, ErrNoBackup{Name: s.GetName()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	result := device.Result[bool]{Value: true}
	var written []state.Reg
	for _, r := range regs {
		result = s.sensor.WriteRegister(r.Addr, r.Value, s.writeOpts)
		if !result.Value {
			break
		}
		written = append(written, r)
	}
	s.observe("restore", start, result.Errors)
	log.Info("Restored %d of %d registers of %s", len(written), len(regs), s.GetName())
	return written, result, nil
}
