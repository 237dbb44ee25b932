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
	"fmt"
	"strings"

	"jinr.ru/greenlab/go-as5047p/pkg/reg"
)

// SensorErrors are the faults the sensor reports about itself. The first
// three come from ERRFL, the others from DIAAGC.
type SensorErrors struct {
	FramingError          bool `json:"framingError"`
	InvalidCommand        bool `json:"invalidCommand"`
	ParityError           bool `json:"parityError"`
	OffsetCompNotFinished bool `json:"offsetCompNotFinished"`
	CordicOverflow        bool `json:"cordicOverflow"`
	MagTooHigh            bool `json:"magTooHigh"`
	MagTooLow             bool `json:"magTooLow"`
}

func (e SensorErrors) communication() bool {
	return e.FramingError || e.InvalidCommand || e.ParityError
}

func (e SensorErrors) diagnostics() bool {
	return e.OffsetCompNotFinished || e.CordicOverflow || e.MagTooHigh || e.MagTooLow
}

// ControllerErrors are the faults detected on the host side
type ControllerErrors struct {
	ParityError       bool `json:"parityError"`
	WriteVerifyFailed bool `json:"writeVerifyFailed"`
	TransferFailed    bool `json:"transferFailed"`
}

// ErrorInfo is filled in by every sensor operation. A zero ErrorInfo means
// the operation went through without any fault.
type ErrorInfo struct {
	Sensor     SensorErrors     `json:"sensor"`
	Controller ControllerErrors `json:"controller"`
	// Addr is the register the operation was about
	Addr uint16 `json:"addr"`
	// Received is the first reply word that failed the parity check
	Received uint16 `json:"received,omitempty"`
	// Expected and Actual are set when a write could not be verified
	Expected uint16 `json:"expected,omitempty"`
	Actual   uint16 `json:"actual,omitempty"`
	Transfer error  `json:"-"`
}

// NoError reports whether no fault was recorded
func (e ErrorInfo) NoError() bool {
	return !e.Sensor.communication() && !e.Sensor.diagnostics() &&
		e.Controller == ControllerErrors{}
}

func (e *ErrorInfo) parityMismatch(word uint16) {
	if !e.Controller.ParityError {
		e.Received = word
	}
	e.Controller.ParityError = true
}

func (e *ErrorInfo) transferFailed(err error) {
	e.Controller.TransferFailed = true
	if e.Transfer == nil {
		e.Transfer = err
	}
}

func (e *ErrorInfo) applyERRFL(r ERRFL) {
	e.Sensor.FramingError = e.Sensor.FramingError || r.FRERR
	e.Sensor.InvalidCommand = e.Sensor.InvalidCommand || r.INVCOMM
	e.Sensor.ParityError = e.Sensor.ParityError || r.PARERR
}

func (e *ErrorInfo) applyDIAAGC(r DIAAGC) {
	e.Sensor.OffsetCompNotFinished = e.Sensor.OffsetCompNotFinished || !r.LF
	e.Sensor.CordicOverflow = e.Sensor.CordicOverflow || r.COF
	e.Sensor.MagTooHigh = e.Sensor.MagTooHigh || r.MAGH
	e.Sensor.MagTooLow = e.Sensor.MagTooLow || r.MAGL
}

// merge adds the faults of other. Details already recorded are kept.
func (e *ErrorInfo) merge(other ErrorInfo) {
	if other.NoError() {
		return
	}
	if e.NoError() {
		e.Addr = other.Addr
	}
	if other.Controller.ParityError {
		e.parityMismatch(other.Received)
	}
	if other.Controller.TransferFailed {
		e.transferFailed(other.Transfer)
	}
	if other.Controller.WriteVerifyFailed && !e.Controller.WriteVerifyFailed {
		e.Controller.WriteVerifyFailed = true
		e.Expected = other.Expected
		e.Actual = other.Actual
	}
	e.applyERRFL(ERRFL{
		FRERR:   other.Sensor.FramingError,
		INVCOMM: other.Sensor.InvalidCommand,
		PARERR:  other.Sensor.ParityError,
	})
	e.Sensor.OffsetCompNotFinished = e.Sensor.OffsetCompNotFinished || other.Sensor.OffsetCompNotFinished
	e.Sensor.CordicOverflow = e.Sensor.CordicOverflow || other.Sensor.CordicOverflow
	e.Sensor.MagTooHigh = e.Sensor.MagTooHigh || other.Sensor.MagTooHigh
	e.Sensor.MagTooLow = e.Sensor.MagTooLow || other.Sensor.MagTooLow
}

// Err returns the recorded faults as one error or nil. Every fault kind is
// a typed error that errors.As can find.
func (e ErrorInfo) Err() error {
	var errs []error
	if e.Controller.TransferFailed {
		errs = append(errs, ErrTransfer{Addr: e.Addr, Err: e.Transfer})
	}
	if e.Controller.ParityError {
		errs = append(errs, ErrParityMismatch{Addr: e.Addr, Word: e.Received})
	}
	if e.Sensor.communication() {
		errs = append(errs, ErrCommunication{
			FramingError:   e.Sensor.FramingError,
			InvalidCommand: e.Sensor.InvalidCommand,
			ParityError:    e.Sensor.ParityError,
		})
	}
	if e.Sensor.diagnostics() {
		errs = append(errs, ErrSensor{
			OffsetCompNotFinished: e.Sensor.OffsetCompNotFinished,
			CordicOverflow:        e.Sensor.CordicOverflow,
			MagTooHigh:            e.Sensor.MagTooHigh,
			MagTooLow:             e.Sensor.MagTooLow,
		})
	}
	if e.Controller.WriteVerifyFailed {
		errs = append(errs, ErrWriteVerificationFailed{Addr: e.Addr, Expected: e.Expected, Actual: e.Actual})
	}
	return errors.Join(errs...)
}

// ErrParityMismatch returned when a received frame has odd parity
type ErrParityMismatch struct {
	Addr uint16
	Word uint16
}

func (e ErrParityMismatch) Error() string {
	return fmt.Sprintf("Parity mismatch reading 0x%04X: received 0x%04X", e.Addr, e.Word)
}

// ErrCommunication returned when the sensor flags a communication error in ERRFL
type ErrCommunication struct {
	FramingError   bool
	InvalidCommand bool
	ParityError    bool
}

func (e ErrCommunication) Error() string {
	return "Sensor reported communication error: " + joinFlags(
		flag{e.FramingError, "framing error"},
		flag{e.InvalidCommand, "invalid command"},
		flag{e.ParityError, "parity error"},
	)
}

// ErrSensor returned when DIAAGC reports a measurement fault
type ErrSensor struct {
	OffsetCompNotFinished bool
	CordicOverflow        bool
	MagTooHigh            bool
	MagTooLow             bool
}

func (e ErrSensor) Error() string {
	return "Sensor error: " + joinFlags(
		flag{e.OffsetCompNotFinished, "offset compensation not finished"},
		flag{e.CordicOverflow, "CORDIC overflow"},
		flag{e.MagTooHigh, "magnetic field too strong"},
		flag{e.MagTooLow, "magnetic field too weak"},
	)
}

// ErrWriteVerificationFailed returned when a register does not read back what was written
type ErrWriteVerificationFailed struct {
	Addr     uint16
	Expected uint16
	Actual   uint16
}

func (e ErrWriteVerificationFailed) Error() string {
	return fmt.Sprintf("Write verification failed for 0x%04X: wrote 0x%04X, read back 0x%04X",
		e.Addr, e.Expected, e.Actual)
}

// ErrTransfer wraps an error of the transport
type ErrTransfer struct {
	Addr uint16
	Err  error
}

func (e ErrTransfer) Error() string {
	return fmt.Sprintf("Transfer failed for 0x%04X: %v", e.Addr, e.Err)
}

func (e ErrTransfer) Unwrap() error {
	return e.Err
}

// ErrAngleOutOfRange returned for raw angles that do not fit 14 bits
type ErrAngleOutOfRange struct {
	Raw uint16
}

func (e ErrAngleOutOfRange) Error() string {
	return fmt.Sprintf("Raw angle %d is out of range 0..%d", e.Raw, MaxAngle)
}

// ErrAddrOutOfRange returned by ReadConsecutive for ranges that run past
// the last register address
type ErrAddrOutOfRange struct {
	Addr  uint16
	Count int
}

func (e ErrAddrOutOfRange) Error() string {
	return fmt.Sprintf("Reading %d registers from 0x%04X runs past 0x%04X", e.Count, e.Addr, reg.AddrMask)
}

// ErrNotResponding returned by Init when the reachability check fails
type ErrNotResponding struct {
	Name string
	Word uint16
}

func (e ErrNotResponding) Error() string {
	return fmt.Sprintf("Sensor %s is not responding: got 0x%04X reading ERRFL", e.Name, e.Word)
}

type flag struct {
	set  bool
	name string
}

func joinFlags(flags ...flag) string {
	var names []string
	for _, f := range flags {
		if f.set {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ", ")
}
