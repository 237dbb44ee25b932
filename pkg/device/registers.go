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
	"jinr.ru/greenlab/go-as5047p/pkg/reg"
)

func readAs[T any](s *Sensor, addr uint16, opts ReadOptions, decode func(uint16) T) Result[T] {
	r := s.ReadRegister(addr, opts)
	return Result[T]{Value: decode(r.Value), Errors: r.Errors}
}

func (s *Sensor) ReadERRFL(opts ReadOptions) Result[ERRFL] {
	return readAs(s, reg.ERRFL, opts, DecodeERRFL)
}

func (s *Sensor) ReadPROG(opts ReadOptions) Result[PROG] {
	return readAs(s, reg.PROG, opts, DecodePROG)
}

func (s *Sensor) ReadDIAAGC(opts ReadOptions) Result[DIAAGC] {
	return readAs(s, reg.DIAAGC, opts, DecodeDIAAGC)
}

func (s *Sensor) ReadMAG(opts ReadOptions) Result[MAG] {
	return readAs(s, reg.MAG, opts, DecodeMAG)
}

func (s *Sensor) ReadANGLEUNC(opts ReadOptions) Result[ANGLEUNC] {
	return readAs(s, reg.ANGLEUNC, opts, DecodeANGLEUNC)
}

func (s *Sensor) ReadANGLECOM(opts ReadOptions) Result[ANGLECOM] {
	return readAs(s, reg.ANGLECOM, opts, DecodeANGLECOM)
}

func (s *Sensor) ReadZPOSM(opts ReadOptions) Result[ZPOSM] {
	return readAs(s, reg.ZPOSM, opts, DecodeZPOSM)
}

func (s *Sensor) ReadZPOSL(opts ReadOptions) Result[ZPOSL] {
	return readAs(s, reg.ZPOSL, opts, DecodeZPOSL)
}

func (s *Sensor) ReadSETTINGS1(opts ReadOptions) Result[SETTINGS1] {
	return readAs(s, reg.SETTINGS1, opts, DecodeSETTINGS1)
}

func (s *Sensor) ReadSETTINGS2(opts ReadOptions) Result[SETTINGS2] {
	return readAs(s, reg.SETTINGS2, opts, DecodeSETTINGS2)
}

// WritePROG writes the programming control register. Setting PROGOTP
// burns the non-volatile registers into OTP, which can be done only once.
func (s *Sensor) WritePROG(v PROG, opts WriteOptions) Result[bool] {
	return s.WriteRegister(reg.PROG, v.Raw(), opts)
}

func (s *Sensor) WriteZPOSM(v ZPOSM, opts WriteOptions) Result[bool] {
	return s.WriteRegister(reg.ZPOSM, v.Raw(), opts)
}

func (s *Sensor) WriteZPOSL(v ZPOSL, opts WriteOptions) Result[bool] {
	return s.WriteRegister(reg.ZPOSL, v.Raw(), opts)
}

func (s *Sensor) WriteSETTINGS1(v SETTINGS1, opts WriteOptions) Result[bool] {
	return s.WriteRegister(reg.SETTINGS1, v.Raw(), opts)
}

func (s *Sensor) WriteSETTINGS2(v SETTINGS2, opts WriteOptions) Result[bool] {
	return s.WriteRegister(reg.SETTINGS2, v.Raw(), opts)
}
