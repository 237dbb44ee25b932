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

package device

import (
	"errors"
	"testing"

	"jinr.ru/greenlab/go-as5047p/pkg/device/sim"
	"jinr.ru/greenlab/go-as5047p/pkg/layers"
	"jinr.ru/greenlab/go-as5047p/pkg/reg"
)

func newTestSensor(t *testing.T) (*Sensor, *sim.Sensor) {
	t.Helper()
	bus := sim.New()
	s := NewSensor(bus, "test")
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	bus.ClearFrames()
	return s, bus
}

func TestInit(t *testing.T) {
	bus := sim.New()
	bus.SetErrorFlags(reg.ErrflFRERR)
	s := NewSensor(bus, "test")
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if got := bus.Register(reg.ERRFL); got != 0 {
		t.Errorf("ERRFL after Init() = 0x%04X, want 0", got)
	}
}

func TestInitFails(t *testing.T) {
	initErr := errors.New("no such port")
	bus := sim.New()
	bus.FailInit(initErr)
	if err := NewSensor(bus, "test").Init(); !errors.Is(err, initErr) {
		t.Errorf("Init() error = %v, want %v", err, initErr)
	}

	bus = sim.New()
	bus.CorruptRead(reg.ERRFL, 0x8000)
	err := NewSensor(bus, "test").Init()
	var notResponding ErrNotResponding
	if !errors.As(err, &notResponding) {
		t.Errorf("Init() error = %v, want ErrNotResponding", err)
	}
}

func TestReadRegisterFrames(t *testing.T) {
	s, bus := newTestSensor(t)
	bus.SetRegister(reg.MAG, 0x1234)

	r := s.ReadRegister(reg.MAG, NoReadChecks)
	if !r.Ok() {
		t.Fatalf("ReadRegister() errors = %v", r.Err())
	}
	if r.Value != 0x1234 {
		t.Errorf("ReadRegister() = 0x%04X, want 0x1234", r.Value)
	}
	frames := bus.Frames()
	want := []uint16{layers.CommandWord(true, reg.MAG), layers.CommandWord(true, reg.NOP)}
	if len(frames) != len(want) {
		t.Fatalf("sent %d frames, want %d", len(frames), len(want))
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d = 0x%04X, want 0x%04X", i, frames[i], want[i])
		}
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		addr  uint16
		value uint16
	}{
		{name: "ZPOSM zero", addr: reg.ZPOSM, value: 0},
		{name: "ZPOSM ones", addr: reg.ZPOSM, value: 0xFF},
		{name: "ZPOSL zero", addr: reg.ZPOSL, value: 0},
		{name: "ZPOSL ones", addr: reg.ZPOSL, value: 0xFF},
		{name: "ZPOSL position only", addr: reg.ZPOSL, value: 0x3F},
		{name: "SETTINGS1 zero", addr: reg.SETTINGS1, value: 0},
		{name: "SETTINGS1 ones", addr: reg.SETTINGS1, value: 0xFF},
		{name: "SETTINGS2 zero", addr: reg.SETTINGS2, value: 0},
		{name: "SETTINGS2 ones", addr: reg.SETTINGS2, value: 0xFF},
		{name: "PROG zero", addr: reg.PROG, value: 0},
		{name: "PROG all fields", addr: reg.PROG, value: 0x4D},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSensor(t)
			w := s.WriteRegister(tt.addr, tt.value, NoWriteChecks)
			if !w.Value {
				t.Fatalf("WriteRegister() = false, errors: %v", w.Err())
			}
			r := s.ReadRegister(tt.addr, DefaultReadOptions())
			if !r.Ok() {
				t.Fatalf("ReadRegister() errors = %v", r.Err())
			}
			if r.Value != tt.value {
				t.Errorf("ReadRegister() = 0x%04X, want 0x%04X", r.Value, tt.value)
			}
		})
	}
}

func TestTypedRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		write func(s *Sensor) Result[bool]
		check func(s *Sensor) bool
	}{
		{
			name:  "ZPOSM",
			write: func(s *Sensor) Result[bool] { return s.WriteZPOSM(ZPOSM{ZPOSM: 0xFF}, NoWriteChecks) },
			check: func(s *Sensor) bool { return s.ReadZPOSM(DefaultReadOptions()).Value == ZPOSM{ZPOSM: 0xFF} },
		},
		{
			name: "ZPOSL",
			write: func(s *Sensor) Result[bool] {
				return s.WriteZPOSL(ZPOSL{ZPOSL: 0x3F, CompHErrorEn: true}, NoWriteChecks)
			},
			check: func(s *Sensor) bool {
				return s.ReadZPOSL(DefaultReadOptions()).Value == ZPOSL{ZPOSL: 0x3F, CompHErrorEn: true}
			},
		},
		{
			name: "SETTINGS1",
			write: func(s *Sensor) Result[bool] {
				return s.WriteSETTINGS1(SETTINGS1{DIR: true, DAECDIS: true, PWMON: true}, NoWriteChecks)
			},
			check: func(s *Sensor) bool {
				return s.ReadSETTINGS1(DefaultReadOptions()).Value == SETTINGS1{DIR: true, DAECDIS: true, PWMON: true}
			},
		},
		{
			name: "SETTINGS2",
			write: func(s *Sensor) Result[bool] {
				return s.WriteSETTINGS2(SETTINGS2{UVWPP: 7, HYS: 3, ABIRES: 7}, NoWriteChecks)
			},
			check: func(s *Sensor) bool {
				return s.ReadSETTINGS2(DefaultReadOptions()).Value == SETTINGS2{UVWPP: 7, HYS: 3, ABIRES: 7}
			},
		},
		{
			name:  "PROG",
			write: func(s *Sensor) Result[bool] { return s.WritePROG(PROG{PROGEN: true, PROGVER: true}, NoWriteChecks) },
			check: func(s *Sensor) bool {
				return s.ReadPROG(DefaultReadOptions()).Value == PROG{PROGEN: true, PROGVER: true}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSensor(t)
			if r := tt.write(s); !r.Value {
				t.Fatalf("write failed: %v", r.Err())
			}
			if !tt.check(s) {
				t.Errorf("value read back differs from value written")
			}
		})
	}
}

func TestParityCorruption(t *testing.T) {
	for bit := 0; bit < 16; bit++ {
		s, bus := newTestSensor(t)
		bus.SetRegister(reg.MAG, 0x0ABC)

		bus.CorruptRead(reg.MAG, 1<<bit)
		r := s.ReadMagnitude(ReadOptions{VerifyParity: true})
		if !r.Errors.Controller.ParityError {
			t.Errorf("bit %d flipped: parity error not reported", bit)
		}
		var mismatch ErrParityMismatch
		if !errors.As(r.Err(), &mismatch) {
			t.Errorf("bit %d flipped: Err() = %v, want ErrParityMismatch", bit, r.Err())
		}

		bus.CorruptRead(reg.MAG, 1<<bit)
		r = s.ReadMagnitude(NoReadChecks)
		if r.Errors.Controller.ParityError {
			t.Errorf("bit %d flipped: parity error reported with VerifyParity off", bit)
		}
	}
}

func TestCorruptPayloadIsForwarded(t *testing.T) {
	s, bus := newTestSensor(t)
	bus.SetRegister(reg.MAG, 0x0ABC)
	bus.CorruptRead(reg.MAG, 0x0001)

	r := s.ReadMagnitude(ReadOptions{VerifyParity: true})
	if r.Ok() {
		t.Fatalf("ReadMagnitude() Ok with corrupt reply")
	}
	if r.Value != 0x0ABD {
		t.Errorf("ReadMagnitude() = 0x%04X, want the received payload 0x0ABD", r.Value)
	}
}

func TestComErrorScenario(t *testing.T) {
	tests := []struct {
		name  string
		errfl uint16
	}{
		{name: "framing", errfl: reg.ErrflFRERR},
		{name: "invalid command", errfl: reg.ErrflINVCOMM},
		{name: "parity", errfl: reg.ErrflPARERR},
		{name: "framing and parity", errfl: reg.ErrflFRERR | reg.ErrflPARERR},
		{name: "all", errfl: 0x0007},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, bus := newTestSensor(t)
			bus.SetErrorFlags(tt.errfl)

			r := s.ReadMAG(ReadOptions{VerifyParity: true, CheckForComError: true})
			want := SensorErrors{
				FramingError:   tt.errfl&reg.ErrflFRERR != 0,
				InvalidCommand: tt.errfl&reg.ErrflINVCOMM != 0,
				ParityError:    tt.errfl&reg.ErrflPARERR != 0,
			}
			if r.Errors.Sensor != want {
				t.Errorf("Sensor errors = %+v, want %+v", r.Errors.Sensor, want)
			}
			var comErr ErrCommunication
			if !errors.As(r.Err(), &comErr) {
				t.Errorf("Err() = %v, want ErrCommunication", r.Err())
			}

			errflRead := layers.CommandWord(true, reg.ERRFL)
			found := false
			for _, f := range bus.Frames() {
				if f == errflRead {
					found = true
				}
			}
			if !found {
				t.Errorf("ERRFL was not read after the error flag was seen")
			}
			if got := bus.Register(reg.ERRFL); got != 0 {
				t.Errorf("ERRFL = 0x%04X after the check, want cleared", got)
			}
		})
	}
}

func TestNoComErrorCheckWithoutErrorFlag(t *testing.T) {
	s, bus := newTestSensor(t)
	r := s.ReadMAG(ReadOptions{VerifyParity: true, CheckForComError: true})
	if !r.Ok() {
		t.Fatalf("ReadMAG() errors = %v", r.Err())
	}
	if n := len(bus.Frames()); n != 2 {
		t.Errorf("sent %d frames, want 2", n)
	}
}

func TestSensorError(t *testing.T) {
	s, bus := newTestSensor(t)
	bus.SetRegister(reg.DIAAGC, reg.DiaagcCOF|reg.DiaagcMAGH|0x00FF)

	r := s.ReadAngleRaw(true, DefaultReadOptions())
	want := SensorErrors{OffsetCompNotFinished: true, CordicOverflow: true, MagTooHigh: true}
	if r.Errors.Sensor != want {
		t.Errorf("Sensor errors = %+v, want %+v", r.Errors.Sensor, want)
	}
	var sensorErr ErrSensor
	if !errors.As(r.Err(), &sensorErr) {
		t.Errorf("Err() = %v, want ErrSensor", r.Err())
	}

	diag := s.CheckForSensorError()
	if diag.Ok() || diag.Value.AGC != 0xFF {
		t.Errorf("CheckForSensorError() = %+v", diag)
	}
}

func TestCheckForComError(t *testing.T) {
	s, bus := newTestSensor(t)
	if r := s.CheckForComError(); !r.Ok() || r.Value.Any() {
		t.Errorf("CheckForComError() on a clean sensor = %+v", r)
	}
	bus.SetErrorFlags(reg.ErrflINVCOMM)
	r := s.CheckForComError()
	if r.Ok() || !r.Value.INVCOMM {
		t.Errorf("CheckForComError() = %+v, want INVCOMM", r)
	}
}

func TestTransferFailure(t *testing.T) {
	busErr := errors.New("bus fault")
	s, bus := newTestSensor(t)
	bus.FailTransfers(busErr)

	r := s.ReadMagnitude(DefaultReadOptions())
	if !r.Errors.Controller.TransferFailed {
		t.Errorf("TransferFailed not set")
	}
	if !errors.Is(r.Err(), busErr) {
		t.Errorf("Err() = %v, want %v", r.Err(), busErr)
	}
	if w := s.WriteZPOSM(ZPOSM{ZPOSM: 1}, DefaultWriteOptions()); w.Value {
		t.Errorf("WriteZPOSM() = true on a failing bus")
	}
}

func TestWriteVerification(t *testing.T) {
	s, bus := newTestSensor(t)
	if r := s.WriteZPOSM(ZPOSM{ZPOSM: 0xAB}, DefaultWriteOptions()); !r.Value || !r.Ok() {
		t.Fatalf("WriteZPOSM(0xAB) = %v, errors: %v", r.Value, r.Err())
	}

	bus.SetWriteHook(func(addr, value uint16) uint16 {
		if addr == reg.ZPOSM {
			return 0xAC
		}
		return value
	})
	r := s.WriteZPOSM(ZPOSM{ZPOSM: 0xAB}, DefaultWriteOptions())
	if r.Value {
		t.Errorf("WriteZPOSM() = true when 0xAC reads back")
	}
	if !r.Errors.Controller.WriteVerifyFailed {
		t.Errorf("WriteVerifyFailed not set")
	}
	var verifyErr ErrWriteVerificationFailed
	if !errors.As(r.Err(), &verifyErr) {
		t.Fatalf("Err() = %v, want ErrWriteVerificationFailed", r.Err())
	}
	if verifyErr.Expected != 0xAB || verifyErr.Actual != 0xAC {
		t.Errorf("verification error = %+v, want 0xAB / 0xAC", verifyErr)
	}

	if r := s.WriteZPOSM(ZPOSM{ZPOSM: 0xAB}, WriteOptions{CheckForComError: true}); !r.Value {
		t.Errorf("WriteZPOSM() without verification = false: %v", r.Err())
	}
}

func TestWriteIgnoresSelfClearingBits(t *testing.T) {
	s, bus := newTestSensor(t)
	bus.SetWriteHook(func(addr, value uint16) uint16 {
		// PROGOTP clears itself once the OTP burn is done
		if addr == reg.PROG {
			return value &^ reg.ProgPROGOTP
		}
		return value
	})
	r := s.WritePROG(PROG{PROGEN: true, PROGOTP: true}, DefaultWriteOptions())
	if !r.Value {
		t.Errorf("WritePROG() = false: %v", r.Err())
	}
}

func TestWriteComError(t *testing.T) {
	s, _ := newTestSensor(t)
	r := s.WriteRegister(reg.MAG, 0x0001, WriteOptions{CheckForComError: true})
	if r.Value {
		t.Errorf("WriteRegister() to a read-only register = true")
	}
	if !r.Errors.Sensor.InvalidCommand {
		t.Errorf("InvalidCommand not reported: %+v", r.Errors)
	}
}

func TestVerifyWrittenReg(t *testing.T) {
	s, bus := newTestSensor(t)
	bus.SetRegister(reg.ZPOSM, 0xAB)

	if r := s.VerifyWrittenReg(reg.ZPOSM, layers.ReplyWord(0xAB, false)); !r.Value {
		t.Errorf("VerifyWrittenReg(0xAB) = false: %v", r.Err())
	}
	r := s.VerifyWrittenReg(reg.ZPOSM, layers.ReplyWord(0xAC, false))
	if r.Value {
		t.Errorf("VerifyWrittenReg(0xAC) = true")
	}
	if r.Errors.Actual != layers.ReplyWord(0xAB, false) {
		t.Errorf("Actual = 0x%04X, want 0x%04X", r.Errors.Actual, layers.ReplyWord(0xAB, false))
	}
}

func TestReadConsecutive(t *testing.T) {
	s, bus := newTestSensor(t)
	want := []uint16{0x12, 0x34, 0x56, 0x78}
	for i, v := range want {
		bus.SetRegister(reg.ZPOSM+uint16(i), v)
	}

	r, err := s.ReadConsecutive(reg.ZPOSM, len(want), NoReadChecks)
	if err != nil || !r.Ok() {
		t.Fatalf("ReadConsecutive() error = %v, errors = %v", err, r.Err())
	}
	for i := range want {
		if r.Value[i] != want[i] {
			t.Errorf("register %d = 0x%04X, want 0x%04X", i, r.Value[i], want[i])
		}
	}
	if n := len(bus.Frames()); n != len(want)+1 {
		t.Errorf("sent %d frames, want %d", n, len(want)+1)
	}
}

func TestReadConsecutiveAddressRange(t *testing.T) {
	s, bus := newTestSensor(t)

	tests := []struct {
		name    string
		addr    uint16
		count   int
		wantErr bool
	}{
		{name: "last register", addr: reg.ANGLECOM, count: 1},
		{name: "up to the last register", addr: reg.DIAAGC, count: 4},
		{name: "past the last register", addr: reg.ANGLECOM, count: 2, wantErr: true},
		{name: "far past the last register", addr: reg.DIAAGC, count: 100, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus.ClearFrames()
			r, err := s.ReadConsecutive(tt.addr, tt.count, NoReadChecks)
			var outOfRange ErrAddrOutOfRange
			if got := errors.As(err, &outOfRange); got != tt.wantErr {
				t.Fatalf("ReadConsecutive(0x%04X, %d) error = %v, wantErr %t", tt.addr, tt.count, err, tt.wantErr)
			}
			if !tt.wantErr {
				if len(r.Value) != tt.count {
					t.Errorf("ReadConsecutive() returned %d values, want %d", len(r.Value), tt.count)
				}
				return
			}
			if n := len(bus.Frames()); n != 0 {
				t.Errorf("sent %d frames for a rejected range", n)
			}
			if r.Value != nil {
				t.Errorf("ReadConsecutive() = %v for a rejected range", r.Value)
			}
		})
	}
}

func TestFollowUpParityRespectsOption(t *testing.T) {
	s, bus := newTestSensor(t)
	all := ReadOptions{CheckForComError: true, CheckForSensorError: true}

	bus.SetErrorFlags(reg.ErrflFRERR)
	bus.CorruptRead(reg.DIAAGC, 1<<reg.ParityBit)
	r := s.ReadMagnitude(all)
	if r.Errors.Controller.ParityError {
		t.Errorf("parity error of the DIAAGC reply reported with VerifyParity off: %v", r.Err())
	}
	if !r.Errors.Sensor.FramingError {
		t.Errorf("framing error not reported: %+v", r.Errors)
	}

	all.VerifyParity = true
	bus.SetErrorFlags(reg.ErrflFRERR)
	bus.CorruptRead(reg.DIAAGC, 1<<reg.ParityBit)
	r = s.ReadMagnitude(all)
	if !r.Errors.Controller.ParityError {
		t.Fatalf("parity error of the DIAAGC reply not reported with VerifyParity on")
	}
	if want := layers.ReplyWord(sim.DefaultDIAAGC, false) ^ 1<<reg.ParityBit; r.Errors.Received != want {
		t.Errorf("Received = 0x%04X, want the DIAAGC reply 0x%04X", r.Errors.Received, want)
	}
}

func TestZeroPosition(t *testing.T) {
	s, bus := newTestSensor(t)
	bus.SetRegister(reg.ZPOSL, reg.ZposlCompLErrorEn|reg.ZposlCompHErrorEn)

	r, err := s.SetZeroPosition(0x2ABC, DefaultWriteOptions())
	if err != nil {
		t.Fatalf("SetZeroPosition() error = %v", err)
	}
	if !r.Value {
		t.Fatalf("SetZeroPosition() = false: %v", r.Err())
	}
	if got := bus.Register(reg.ZPOSM); got != 0xAA {
		t.Errorf("ZPOSM = 0x%02X, want 0xAA", got)
	}
	if got := bus.Register(reg.ZPOSL); got != 0xFC {
		t.Errorf("ZPOSL = 0x%02X, want 0xFC", got)
	}
	if z := s.ReadZeroPosition(DefaultReadOptions()); z.Value != 0x2ABC {
		t.Errorf("ReadZeroPosition() = 0x%04X, want 0x2ABC", z.Value)
	}

	if _, err := s.SetZeroPosition(AngleCounts, DefaultWriteOptions()); err == nil {
		t.Errorf("SetZeroPosition(%d) error = nil", AngleCounts)
	}
}

func TestReadStatus(t *testing.T) {
	s, bus := newTestSensor(t)
	bus.SetAngle(4096)

	st := s.ReadStatus(DefaultReadOptions())
	if !st.Ok() {
		t.Fatalf("ReadStatus() errors = %v", st.Errors.Err())
	}
	if st.ANGLECOM.DAECANG != 4096 || st.MAG.CMAG != sim.DefaultMAG || !st.SETTINGS1.Factory {
		t.Errorf("ReadStatus() = %+v", st)
	}
	if st.String() == "" {
		t.Errorf("Status.String() is empty")
	}

	bus.SetRegister(reg.DIAAGC, 0)
	if st := s.ReadStatus(DefaultReadOptions()); !st.Errors.Sensor.OffsetCompNotFinished {
		t.Errorf("ReadStatus() did not report the unfinished offset loop")
	}
}
