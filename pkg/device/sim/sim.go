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

// Package sim is an AS5047P that lives in memory. It answers frames the way
// the sensor does: the reply to a command comes with the next frame, the
// error flag of a reply reports errors of earlier frames and ERRFL is
// cleared by reading it.
package sim

import (
	"sync"

	"jinr.ru/greenlab/go-as5047p/pkg/layers"
	"jinr.ru/greenlab/go-as5047p/pkg/reg"
	"jinr.ru/greenlab/go-as5047p/pkg/transport"
)

const (
	DefaultDIAAGC    = reg.DiaagcLF | 0x0080
	DefaultMAG       = 0x0FA0
	DefaultSETTINGS1 = reg.Settings1Factory
)

// WriteHook may change a value before the simulator stores it
type WriteHook func(addr, value uint16) uint16

type Sensor struct {
	mu          sync.Mutex
	regs        map[uint16]uint16
	errfl       uint16
	pending     uint16
	expectData  bool
	writeAddr   uint16
	corrupt     map[uint16]uint16
	writeHook   WriteHook
	failErr     error
	initErr     error
	initialized bool
	frames      []uint16
}

var _ transport.Transport = &Sensor{}

func New() *Sensor {
	s := &Sensor{}
	s.Reset()
	return s
}

// Reset brings the simulator to its power-up state
func (s *Sensor) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs = map[uint16]uint16{
		reg.DIAAGC:    DefaultDIAAGC,
		reg.MAG:       DefaultMAG,
		reg.SETTINGS1: DefaultSETTINGS1,
	}
	s.errfl = 0
	s.pending = layers.ReplyWord(0, false)
	s.expectData = false
	s.corrupt = make(map[uint16]uint16)
	s.writeHook = nil
	s.failErr = nil
	s.frames = nil
}

func (s *Sensor) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initErr != nil {
		return s.initErr
	}
	s.initialized = true
	return nil
}

func (s *Sensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	return nil
}

func (s *Sensor) TransferWord(word uint16) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transfer(word)
}

func (s *Sensor) TransferWords(words []uint16) ([]uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]uint16, 0, len(words))
	for _, word := range words {
		rx, err := s.transfer(word)
		if err != nil {
			return nil, err
		}
		result = append(result, rx)
	}
	return result, nil
}

func (s *Sensor) transfer(word uint16) (uint16, error) {
	if !s.initialized {
		return 0, transport.ErrNotInitialized{Name: "sim"}
	}
	if s.failErr != nil {
		return 0, s.failErr
	}
	s.frames = append(s.frames, word)
	reply := s.pending
	s.pending = s.process(word)
	return reply, nil
}

func (s *Sensor) reply(value uint16) uint16 {
	return layers.ReplyWord(value, s.errfl != 0)
}

func (s *Sensor) process(word uint16) uint16 {
	if !layers.IsEvenParity(word) {
		s.errfl |= reg.ErrflPARERR
		s.expectData = false
		return s.reply(0)
	}

	if s.expectData {
		s.expectData = false
		desc, _ := reg.ByAddr(s.writeAddr)
		value := word & desc.WriteMask
		if s.writeHook != nil {
			value = s.writeHook(s.writeAddr, value) & reg.DataMask
		}
		s.regs[s.writeAddr] = value
		return s.reply(value)
	}

	cmd, ok := layers.DecodeMOSI([]uint16{word}).Layer(layers.CommandLayerType).(*layers.CommandLayer)
	if !ok {
		s.errfl |= reg.ErrflFRERR
		return s.reply(0)
	}
	desc, err := reg.ByAddr(cmd.Addr)
	if err != nil || (!cmd.Read && !desc.Writable()) {
		s.errfl |= reg.ErrflINVCOMM
		return s.reply(0)
	}

	if !cmd.Read {
		s.expectData = true
		s.writeAddr = cmd.Addr
		return s.reply(s.regs[cmd.Addr])
	}

	var value uint16
	if cmd.Addr == reg.ERRFL {
		value = s.errfl
	} else {
		value = s.regs[cmd.Addr] & reg.DataMask
	}
	result := s.reply(value)
	if mask, ok := s.corrupt[cmd.Addr]; ok {
		result ^= mask
		delete(s.corrupt, cmd.Addr)
	}
	if cmd.Addr == reg.ERRFL {
		s.errfl = 0
	}
	return result
}

// SetRegister stores a 14-bit value, e.g. to move the magnet
func (s *Sensor) SetRegister(addr, value uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[addr] = value & reg.DataMask
}

func (s *Sensor) Register(addr uint16) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr == reg.ERRFL {
		return s.errfl
	}
	return s.regs[addr]
}

// SetAngle sets both the compensated and the uncorrected angle
func (s *Sensor) SetAngle(raw uint16) {
	s.SetRegister(reg.ANGLECOM, raw)
	s.SetRegister(reg.ANGLEUNC, raw)
}

// SetErrorFlags raises ERRFL bits as if a previous frame had failed
func (s *Sensor) SetErrorFlags(flags uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errfl |= flags & 0x0007
}

// CorruptRead flips the bits of mask in the next reply carrying addr
func (s *Sensor) CorruptRead(addr, mask uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt[addr] = mask
}

func (s *Sensor) SetWriteHook(hook WriteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeHook = hook
}

// FailTransfers makes every transfer fail with err until called with nil
func (s *Sensor) FailTransfers(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// FailInit makes Init fail with err
func (s *Sensor) FailInit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initErr = err
}

// Frames returns every frame received since the last reset
func (s *Sensor) Frames() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := make([]uint16, len(s.frames))
	copy(frames, s.frames)
	return frames
}

func (s *Sensor) ClearFrames() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
}
