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
	"fmt"
	"strings"
)

// Status is a snapshot of every register of the sensor
type Status struct {
	ERRFL     ERRFL     `json:"errfl"`
	PROG      PROG      `json:"prog"`
	DIAAGC    DIAAGC    `json:"diaagc"`
	MAG       MAG       `json:"mag"`
	ANGLEUNC  ANGLEUNC  `json:"angleunc"`
	ANGLECOM  ANGLECOM  `json:"anglecom"`
	ZPOSM     ZPOSM     `json:"zposm"`
	ZPOSL     ZPOSL     `json:"zposl"`
	SETTINGS1 SETTINGS1 `json:"settings1"`
	SETTINGS2 SETTINGS2 `json:"settings2"`
	Errors    ErrorInfo `json:"errors"`
}

func (st Status) Ok() bool {
	return st.Errors.NoError()
}

func collect[T any](info *ErrorInfo, r Result[T]) T {
	info.merge(r.Errors)
	return r.Value
}

// ReadStatus reads all registers. ERRFL is read first so it shows what was
// pending before the dump. DIAAGC is read once and the sensor checks are
// done on that value instead of after every register.
func (s *Sensor) ReadStatus(opts ReadOptions) Status {
	perReg := opts
	perReg.CheckForSensorError = false

	var st Status
	st.ERRFL = collect(&st.Errors, s.ReadERRFL(ReadOptions{VerifyParity: opts.VerifyParity}))
	st.PROG = collect(&st.Errors, s.ReadPROG(perReg))
	st.DIAAGC = collect(&st.Errors, s.ReadDIAAGC(perReg))
	st.MAG = collect(&st.Errors, s.ReadMAG(perReg))
	st.ANGLEUNC = collect(&st.Errors, s.ReadANGLEUNC(perReg))
	st.ANGLECOM = collect(&st.Errors, s.ReadANGLECOM(perReg))
	st.ZPOSM = collect(&st.Errors, s.ReadZPOSM(perReg))
	st.ZPOSL = collect(&st.Errors, s.ReadZPOSL(perReg))
	st.SETTINGS1 = collect(&st.Errors, s.ReadSETTINGS1(perReg))
	st.SETTINGS2 = collect(&st.Errors, s.ReadSETTINGS2(perReg))
	if opts.CheckForSensorError {
		st.Errors.applyDIAAGC(st.DIAAGC)
	}
	return st
}

func onOff(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (st Status) String() string {
	var b strings.Builder
	deg, _ := AngleToDegree(st.ANGLECOM.DAECANG)
	fmt.Fprintf(&b, "ERRFL:     FRERR=%s INVCOMM=%s PARERR=%s\n",
		onOff(st.ERRFL.FRERR), onOff(st.ERRFL.INVCOMM), onOff(st.ERRFL.PARERR))
	fmt.Fprintf(&b, "PROG:      PROGEN=%s OTPREF=%s PROGOTP=%s PROGVER=%s\n",
		onOff(st.PROG.PROGEN), onOff(st.PROG.OTPREF), onOff(st.PROG.PROGOTP), onOff(st.PROG.PROGVER))
	fmt.Fprintf(&b, "DIAAGC:    AGC=%d LF=%s COF=%s MAGH=%s MAGL=%s\n",
		st.DIAAGC.AGC, onOff(st.DIAAGC.LF), onOff(st.DIAAGC.COF), onOff(st.DIAAGC.MAGH), onOff(st.DIAAGC.MAGL))
	fmt.Fprintf(&b, "MAG:       CMAG=%d\n", st.MAG.CMAG)
	fmt.Fprintf(&b, "ANGLEUNC:  CORDICANG=%d\n", st.ANGLEUNC.CORDICANG)
	fmt.Fprintf(&b, "ANGLECOM:  DAECANG=%d (%.2f deg)\n", st.ANGLECOM.DAECANG, deg)
	fmt.Fprintf(&b, "ZPOSM:     ZPOSM=0x%02X\n", st.ZPOSM.ZPOSM)
	fmt.Fprintf(&b, "ZPOSL:     ZPOSL=0x%02X COMP_L_ERROR_EN=%s COMP_H_ERROR_EN=%s (zero at %d)\n",
		st.ZPOSL.ZPOSL, onOff(st.ZPOSL.CompLErrorEn), onOff(st.ZPOSL.CompHErrorEn), zeroPosition(st.ZPOSM, st.ZPOSL))
	s1 := st.SETTINGS1
	fmt.Fprintf(&b, "SETTINGS1: FACTORY=%s NOISESET=%s DIR=%s UVW_ABI=%s DAECDIS=%s ABIBIN=%s DATASELECT=%s PWMON=%s\n",
		onOff(s1.Factory), onOff(s1.NOISESET), onOff(s1.DIR), onOff(s1.UVWABI),
		onOff(s1.DAECDIS), onOff(s1.ABIBIN), onOff(s1.DATASELECT), onOff(s1.PWMON))
	fmt.Fprintf(&b, "SETTINGS2: UVWPP=%d HYS=%d ABIRES=%d\n", st.SETTINGS2.UVWPP, st.SETTINGS2.HYS, st.SETTINGS2.ABIRES)
	if err := st.Errors.Err(); err != nil {
		fmt.Fprintf(&b, "Errors:    %s\n", strings.ReplaceAll(err.Error(), "\n", "; "))
	} else {
		fmt.Fprintf(&b, "Errors:    none\n")
	}
	return b.String()
}
