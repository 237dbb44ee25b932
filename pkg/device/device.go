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

// Package device is the AS5047P register protocol engine.
//
// The sensor answers a command with the next frame, so every logical read is
// a command frame followed by a NOP frame and the reply of interest is the
// second one. Sensor hides this: callers only see complete transactions.
//
// Sensor has no locking. A single goroutine must own it.
package device

import (
	"errors"
	"fmt"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-as5047p/pkg/layers"
	"jinr.ru/greenlab/go-as5047p/pkg/log"
	"jinr.ru/greenlab/go-as5047p/pkg/reg"
	"jinr.ru/greenlab/go-as5047p/pkg/transport"
)

var errShortReply = errors.New("transport returned fewer frames than sent")

type Sensor struct {
	Name string
	t    transport.Transport
}

// NewSensor ...
func NewSensor(t transport.Transport, name string) *Sensor {
	return &Sensor{
		Name: name,
		t:    t,
	}
}

func (s *Sensor) GetName() string {
	return s.Name
}

// Init initializes the transport and checks that the sensor answers a read of
// ERRFL with a well formed frame. The read also clears stale error flags.
func (s *Sensor) Init() error {
	if err := s.t.Init(); err != nil {
		return fmt.Errorf("init transport: %w", err)
	}
	var info ErrorInfo
	info.Addr = reg.ERRFL
	reply := s.exchange(&info, readCommand(reg.ERRFL), readCommand(reg.NOP))
	if reply == nil {
		return info.Err()
	}
	if !reply.ParityOk || reply.Data&^reg.RegMap[reg.RegERRFL].Mask != 0 {
		return ErrNotResponding{Name: s.Name, Word: reply.Raw}
	}
	if stale := DecodeERRFL(reply.Data); stale.Any() {
		log.Debug("%s: cleared stale ERRFL 0x%04X", s.Name, stale.Raw())
	}
	log.Info("Sensor %s initialized", s.Name)
	return nil
}

func (s *Sensor) Close() error {
	return s.t.Close()
}

func readCommand(addr uint16) *layers.CommandLayer {
	return &layers.CommandLayer{Read: true, Addr: addr}
}

// transact sends frames in one go and returns the decoded replies. Transport
// failures are recorded in info and give nil.
func (s *Sensor) transact(info *ErrorInfo, frames ...gopacket.SerializableLayer) []*layers.DataLayer {
	words, err := layers.SerializeFrames(frames...)
	if err != nil {
		info.transferFailed(err)
		return nil
	}
	rx, err := s.t.TransferWords(words)
	if err != nil {
		info.transferFailed(err)
		return nil
	}
	if len(rx) != len(words) {
		info.transferFailed(errShortReply)
		return nil
	}
	var replies []*layers.DataLayer
	for _, l := range layers.DecodeMISO(rx).Layers() {
		if d, ok := l.(*layers.DataLayer); ok {
			replies = append(replies, d)
		}
	}
	if len(replies) != len(words) {
		info.transferFailed(errShortReply)
		return nil
	}
	return replies
}

// exchange is transact for a command followed by a single frame. It returns
// the reply clocked out during the second frame.
func (s *Sensor) exchange(info *ErrorInfo, first, second gopacket.SerializableLayer) *layers.DataLayer {
	replies := s.transact(info, first, second)
	if replies == nil {
		return nil
	}
	return replies[1]
}

func (s *Sensor) checkReply(reply *layers.DataLayer, verifyParity bool, info *ErrorInfo) {
	if verifyParity && !reply.ParityOk {
		log.Warning("%s: parity mismatch in reply 0x%04X", s.Name, reply.Raw)
		info.parityMismatch(reply.Raw)
	}
}

// comError reads ERRFL, which clears it, and records its flags. A parity
// mismatch in the ERRFL reply is only recorded when verifyParity is set.
func (s *Sensor) comError(info *ErrorInfo, verifyParity bool) ERRFL {
	reply := s.exchange(info, readCommand(reg.ERRFL), readCommand(reg.NOP))
	if reply == nil {
		return ERRFL{}
	}
	if verifyParity && !reply.ParityOk {
		log.Warning("%s: parity mismatch in ERRFL reply 0x%04X", s.Name, reply.Raw)
		info.parityMismatch(reply.Raw)
		return ERRFL{}
	}
	errfl := DecodeERRFL(reply.Data)
	if errfl.Any() {
		log.Warning("%s: sensor reported communication error 0x%04X", s.Name, errfl.Raw())
	}
	info.applyERRFL(errfl)
	return errfl
}

// sensorError reads DIAAGC and records its fault bits. The parity of the
// DIAAGC reply is checked only when verifyParity is set.
func (s *Sensor) sensorError(info *ErrorInfo, verifyParity bool) DIAAGC {
	reply := s.exchange(info, readCommand(reg.DIAAGC), readCommand(reg.NOP))
	if reply == nil {
		return DIAAGC{}
	}
	if verifyParity && !reply.ParityOk {
		log.Warning("%s: parity mismatch in DIAAGC reply 0x%04X", s.Name, reply.Raw)
		info.parityMismatch(reply.Raw)
		return DIAAGC{}
	}
	diag := DecodeDIAAGC(reply.Data)
	info.applyDIAAGC(diag)
	return diag
}

// CheckForComError reads and clears ERRFL. The result is not Ok when any
// error flag was set.
func (s *Sensor) CheckForComError() Result[ERRFL] {
	info := ErrorInfo{Addr: reg.ERRFL}
	errfl := s.comError(&info, true)
	return Result[ERRFL]{Value: errfl, Errors: info}
}

// CheckForSensorError reads DIAAGC. The result is not Ok when the offset
// loop has not finished or CORDIC or the magnetic field are out of range.
func (s *Sensor) CheckForSensorError() Result[DIAAGC] {
	info := ErrorInfo{Addr: reg.DIAAGC}
	diag := s.sensorError(&info, true)
	return Result[DIAAGC]{Value: diag, Errors: info}
}

func payloadMask(addr uint16) uint16 {
	desc, err := reg.ByAddr(addr)
	if err != nil {
		return reg.DataMask
	}
	return desc.Mask
}

// ReadRegister reads one register. The payload is masked to the bits the
// register defines and is returned even when a check fails.
func (s *Sensor) ReadRegister(addr uint16, opts ReadOptions) Result[uint16] {
	info := ErrorInfo{Addr: addr}
	value := s.readRegister(addr, opts, &info)
	s.report("read", addr, &info)
	return Result[uint16]{Value: value, Errors: info}
}

func (s *Sensor) readRegister(addr uint16, opts ReadOptions, info *ErrorInfo) uint16 {
	reply := s.exchange(info, readCommand(addr), readCommand(reg.NOP))
	if reply == nil {
		return 0
	}
	log.Debug("%s: read 0x%04X -> 0x%04X", s.Name, addr, reply.Raw)
	s.checkReply(reply, opts.VerifyParity, info)
	if reply.ErrorFlag && opts.CheckForComError {
		s.comError(info, opts.VerifyParity)
	}
	if opts.CheckForSensorError {
		s.sensorError(info, opts.VerifyParity)
	}
	return reply.Data & payloadMask(addr)
}

// ReadConsecutive reads count registers starting at addr with count command
// frames and one NOP, count+1 frames in total. The range must stay inside
// the 14-bit address space.
func (s *Sensor) ReadConsecutive(addr uint16, count int, opts ReadOptions) (Result[[]uint16], error) {
	info := ErrorInfo{Addr: addr}
	if count <= 0 {
		return Result[[]uint16]{Errors: info}, nil
	}
	if int(addr)+count-1 > reg.AddrMask {
		return Result[[]uint16]{Errors: info}, ErrAddrOutOfRange{Addr: addr, Count: count}
	}
	frames := make([]gopacket.SerializableLayer, 0, count+1)
	for i := 0; i < count; i++ {
		frames = append(frames, readCommand(addr+uint16(i)))
	}
	frames = append(frames, readCommand(reg.NOP))

	replies := s.transact(&info, frames...)
	if replies == nil {
		s.report("read", addr, &info)
		return Result[[]uint16]{Errors: info}, nil
	}
	values := make([]uint16, count)
	comError := false
	for i, reply := range replies[1:] {
		s.checkReply(reply, opts.VerifyParity, &info)
		comError = comError || reply.ErrorFlag
		values[i] = reply.Data & payloadMask(addr+uint16(i))
	}
	log.Debug("%s: read %d registers from 0x%04X -> %04X", s.Name, count, addr, values)
	if comError && opts.CheckForComError {
		s.comError(&info, opts.VerifyParity)
	}
	if opts.CheckForSensorError {
		s.sensorError(&info, opts.VerifyParity)
	}
	s.report("read", addr, &info)
	return Result[[]uint16]{Value: values, Errors: info}, nil
}

// WriteRegister writes the 14-bit value to addr. Value is true only when no
// fault was seen and, if asked for, the register reads back what was written.
func (s *Sensor) WriteRegister(addr, value uint16, opts WriteOptions) Result[bool] {
	info := ErrorInfo{Addr: addr}
	ok := s.writeRegister(addr, value, opts, &info)
	s.report("write", addr, &info)
	return Result[bool]{Value: ok, Errors: info}
}

func (s *Sensor) writeRegister(addr, value uint16, opts WriteOptions, info *ErrorInfo) bool {
	value &= reg.DataMask
	log.Debug("%s: write 0x%04X <- 0x%04X", s.Name, addr, value)
	if s.transact(info, &layers.CommandLayer{Read: false, Addr: addr}, &layers.WriteLayer{Data: value}) == nil {
		return false
	}
	if opts.CheckForComError {
		s.comError(info, true)
	}
	if opts.VerifyWrittenReg {
		s.verifyMasked(addr, value, info)
	}
	return info.NoError()
}

func (s *Sensor) verifyMasked(addr, value uint16, info *ErrorInfo) {
	mask := uint16(reg.DataMask)
	if desc, err := reg.ByAddr(addr); err == nil {
		mask = desc.VerifyMask
	}
	reply := s.exchange(info, readCommand(addr), readCommand(reg.NOP))
	if reply == nil {
		return
	}
	s.checkReply(reply, true, info)
	if (reply.Data^value)&mask != 0 {
		log.Warning("%s: 0x%04X reads back 0x%04X after writing 0x%04X", s.Name, addr, reply.Data, value)
		info.Controller.WriteVerifyFailed = true
		info.Expected = value
		info.Actual = reply.Data
	}
}

// VerifyWrittenReg reads addr and compares the whole reply frame, parity and
// error flag included, with expected. Use layers.ReplyWord to build expected.
func (s *Sensor) VerifyWrittenReg(addr, expected uint16) Result[bool] {
	info := ErrorInfo{Addr: addr}
	reply := s.exchange(&info, readCommand(addr), readCommand(reg.NOP))
	if reply == nil {
		return Result[bool]{Errors: info}
	}
	if reply.Raw != expected {
		info.Controller.WriteVerifyFailed = true
		info.Expected = expected
		info.Actual = reply.Raw
	}
	return Result[bool]{Value: info.NoError(), Errors: info}
}

func (s *Sensor) report(op string, addr uint16, info *ErrorInfo) {
	if info.NoError() {
		return
	}
	log.Warning("%s: %s 0x%04X: %s", s.Name, op, addr, info.Err())
}
