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
	"math"

	"jinr.ru/greenlab/go-as5047p/pkg/reg"
)

const (
	// AngleCounts is the number of raw angle steps per revolution
	AngleCounts = 1 << reg.PayloadBits
	MaxAngle    = AngleCounts - 1
)

// AngleToDegree converts a raw 14-bit angle to degrees in [0, 360)
func AngleToDegree(raw uint16) (float64, error) {
	if raw > MaxAngle {
		return 0, ErrAngleOutOfRange{Raw: raw}
	}
	return float64(raw) * (360.0 / AngleCounts), nil
}

// DegreeToAngle converts degrees to the nearest raw angle, wrapping at 360
func DegreeToAngle(deg float64) uint16 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return uint16(math.Round(deg*AngleCounts/360)) & reg.DataMask
}

func (s *Sensor) ReadMagnitude(opts ReadOptions) Result[uint16] {
	r := s.ReadMAG(opts)
	return Result[uint16]{Value: r.Value.CMAG, Errors: r.Errors}
}

// ReadAngleRaw reads ANGLECOM when withDAEC is set and ANGLEUNC otherwise
func (s *Sensor) ReadAngleRaw(withDAEC bool, opts ReadOptions) Result[uint16] {
	if withDAEC {
		r := s.ReadANGLECOM(opts)
		return Result[uint16]{Value: r.Value.DAECANG, Errors: r.Errors}
	}
	r := s.ReadANGLEUNC(opts)
	return Result[uint16]{Value: r.Value.CORDICANG, Errors: r.Errors}
}

func (s *Sensor) ReadAngleDegree(withDAEC bool, opts ReadOptions) Result[float64] {
	r := s.ReadAngleRaw(withDAEC, opts)
	// the payload is masked to 14 bits, it is always in range
	deg, _ := AngleToDegree(r.Value)
	return Result[float64]{Value: deg, Errors: r.Errors}
}

// ReadZeroPosition returns the 14-bit zero position held in ZPOSM and ZPOSL
func (s *Sensor) ReadZeroPosition(opts ReadOptions) Result[uint16] {
	// ZPOSM and ZPOSL are adjacent, the range is always valid
	r, _ := s.ReadConsecutive(reg.ZPOSM, 2, opts)
	if len(r.Value) != 2 {
		return Result[uint16]{Errors: r.Errors}
	}
	zposm := DecodeZPOSM(r.Value[0])
	zposl := DecodeZPOSL(r.Value[1])
	return Result[uint16]{Value: zeroPosition(zposm, zposl), Errors: r.Errors}
}

func zeroPosition(m ZPOSM, l ZPOSL) uint16 {
	return uint16(m.ZPOSM)<<reg.ZeroPositionLowBits | uint16(l.ZPOSL)
}

// SetZeroPosition writes raw to ZPOSM and ZPOSL. The error enable bits of
// ZPOSL are kept as they are.
func (s *Sensor) SetZeroPosition(raw uint16, opts WriteOptions) (Result[bool], error) {
	if raw > MaxAngle {
		return Result[bool]{}, ErrAngleOutOfRange{Raw: raw}
	}
	zposl := s.ReadZPOSL(ReadOptions{VerifyParity: true, CheckForComError: opts.CheckForComError})
	if !zposl.Ok() {
		return Result[bool]{Errors: zposl.Errors}, nil
	}
	l := zposl.Value
	l.ZPOSL = uint8(raw & reg.ZposlZPOSLMask)
	m := ZPOSM{ZPOSM: uint8(raw >> reg.ZeroPositionLowBits)}

	if r := s.WriteZPOSM(m, opts); !r.Value {
		return r, nil
	}
	return s.WriteZPOSL(l, opts), nil
}
