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

func isSet(raw, mask uint16) bool {
	return raw&mask != 0
}

func bitIf(set bool, mask uint16) uint16 {
	if set {
		return mask
	}
	return 0
}

// ERRFL error register. Cleared by reading it.
type ERRFL struct {
	FRERR   bool `json:"frerr"`
	INVCOMM bool `json:"invcomm"`
	PARERR  bool `json:"parerr"`
}

func DecodeERRFL(raw uint16) ERRFL {
	return ERRFL{
		FRERR:   isSet(raw, reg.ErrflFRERR),
		INVCOMM: isSet(raw, reg.ErrflINVCOMM),
		PARERR:  isSet(raw, reg.ErrflPARERR),
	}
}

func (r ERRFL) Raw() uint16 {
	return bitIf(r.FRERR, reg.ErrflFRERR) | bitIf(r.INVCOMM, reg.ErrflINVCOMM) | bitIf(r.PARERR, reg.ErrflPARERR)
}

// Any reports whether any error bit is set
func (r ERRFL) Any() bool {
	return r.Raw() != 0
}

// PROG programming control register
type PROG struct {
	PROGEN  bool `json:"progen"`
	OTPREF  bool `json:"otpref"`
	PROGOTP bool `json:"progotp"`
	PROGVER bool `json:"progver"`
}

func DecodePROG(raw uint16) PROG {
	return PROG{
		PROGEN:  isSet(raw, reg.ProgPROGEN),
		OTPREF:  isSet(raw, reg.ProgOTPREF),
		PROGOTP: isSet(raw, reg.ProgPROGOTP),
		PROGVER: isSet(raw, reg.ProgPROGVER),
	}
}

func (r PROG) Raw() uint16 {
	return bitIf(r.PROGEN, reg.ProgPROGEN) | bitIf(r.OTPREF, reg.ProgOTPREF) |
		bitIf(r.PROGOTP, reg.ProgPROGOTP) | bitIf(r.PROGVER, reg.ProgPROGVER)
}

// DIAAGC diagnostics and automatic gain control
type DIAAGC struct {
	AGC  uint8 `json:"agc"`
	LF   bool  `json:"lf"`
	COF  bool  `json:"cof"`
	MAGH bool  `json:"magh"`
	MAGL bool  `json:"magl"`
}

func DecodeDIAAGC(raw uint16) DIAAGC {
	return DIAAGC{
		AGC:  uint8(raw & reg.DiaagcAGCMask),
		LF:   isSet(raw, reg.DiaagcLF),
		COF:  isSet(raw, reg.DiaagcCOF),
		MAGH: isSet(raw, reg.DiaagcMAGH),
		MAGL: isSet(raw, reg.DiaagcMAGL),
	}
}

func (r DIAAGC) Raw() uint16 {
	return uint16(r.AGC) | bitIf(r.LF, reg.DiaagcLF) | bitIf(r.COF, reg.DiaagcCOF) |
		bitIf(r.MAGH, reg.DiaagcMAGH) | bitIf(r.MAGL, reg.DiaagcMAGL)
}

// MAG CORDIC magnitude
type MAG struct {
	CMAG uint16 `json:"cmag"`
}

func DecodeMAG(raw uint16) MAG {
	return MAG{CMAG: raw & reg.DataMask}
}

func (r MAG) Raw() uint16 {
	return r.CMAG & reg.DataMask
}

// ANGLEUNC angle without dynamic angle error compensation
type ANGLEUNC struct {
	CORDICANG uint16 `json:"cordicang"`
}

func DecodeANGLEUNC(raw uint16) ANGLEUNC {
	return ANGLEUNC{CORDICANG: raw & reg.DataMask}
}

func (r ANGLEUNC) Raw() uint16 {
	return r.CORDICANG & reg.DataMask
}

// ANGLECOM angle with dynamic angle error compensation
type ANGLECOM struct {
	DAECANG uint16 `json:"daecang"`
}

func DecodeANGLECOM(raw uint16) ANGLECOM {
	return ANGLECOM{DAECANG: raw & reg.DataMask}
}

func (r ANGLECOM) Raw() uint16 {
	return r.DAECANG & reg.DataMask
}

// ZPOSM holds bits 13..6 of the zero position
type ZPOSM struct {
	ZPOSM uint8 `json:"zposm"`
}

func DecodeZPOSM(raw uint16) ZPOSM {
	return ZPOSM{ZPOSM: uint8(raw & reg.ZposmZPOSMMask)}
}

func (r ZPOSM) Raw() uint16 {
	return uint16(r.ZPOSM)
}

// ZPOSL holds bits 5..0 of the zero position and the magnetic field
// error enables
type ZPOSL struct {
	ZPOSL        uint8 `json:"zposl"`
	CompLErrorEn bool  `json:"compLErrorEn"`
	CompHErrorEn bool  `json:"compHErrorEn"`
}

func DecodeZPOSL(raw uint16) ZPOSL {
	return ZPOSL{
		ZPOSL:        uint8(raw & reg.ZposlZPOSLMask),
		CompLErrorEn: isSet(raw, reg.ZposlCompLErrorEn),
		CompHErrorEn: isSet(raw, reg.ZposlCompHErrorEn),
	}
}

func (r ZPOSL) Raw() uint16 {
	return uint16(r.ZPOSL)&reg.ZposlZPOSLMask |
		bitIf(r.CompLErrorEn, reg.ZposlCompLErrorEn) | bitIf(r.CompHErrorEn, reg.ZposlCompHErrorEn)
}

type SETTINGS1 struct {
	Factory    bool `json:"factory"`
	NOISESET   bool `json:"noiseset"`
	DIR        bool `json:"dir"`
	UVWABI     bool `json:"uvwAbi"`
	DAECDIS    bool `json:"daecdis"`
	ABIBIN     bool `json:"abibin"`
	DATASELECT bool `json:"dataselect"`
	PWMON      bool `json:"pwmon"`
}

func DecodeSETTINGS1(raw uint16) SETTINGS1 {
	return SETTINGS1{
		Factory:    isSet(raw, reg.Settings1Factory),
		NOISESET:   isSet(raw, reg.Settings1NOISESET),
		DIR:        isSet(raw, reg.Settings1DIR),
		UVWABI:     isSet(raw, reg.Settings1UVWABI),
		DAECDIS:    isSet(raw, reg.Settings1DAECDIS),
		ABIBIN:     isSet(raw, reg.Settings1ABIBIN),
		DATASELECT: isSet(raw, reg.Settings1DATASELECT),
		PWMON:      isSet(raw, reg.Settings1PWMON),
	}
}

func (r SETTINGS1) Raw() uint16 {
	return bitIf(r.Factory, reg.Settings1Factory) |
		bitIf(r.NOISESET, reg.Settings1NOISESET) |
		bitIf(r.DIR, reg.Settings1DIR) |
		bitIf(r.UVWABI, reg.Settings1UVWABI) |
		bitIf(r.DAECDIS, reg.Settings1DAECDIS) |
		bitIf(r.ABIBIN, reg.Settings1ABIBIN) |
		bitIf(r.DATASELECT, reg.Settings1DATASELECT) |
		bitIf(r.PWMON, reg.Settings1PWMON)
}

// SETTINGS2 UVWPP is the number of pole pairs minus one, HYS the hysteresis
// setting and ABIRES the ABI resolution setting
type SETTINGS2 struct {
	UVWPP  uint8 `json:"uvwpp"`
	HYS    uint8 `json:"hys"`
	ABIRES uint8 `json:"abires"`
}

func DecodeSETTINGS2(raw uint16) SETTINGS2 {
	return SETTINGS2{
		UVWPP:  uint8(raw & reg.Settings2UVWPPMask),
		HYS:    uint8(raw >> reg.Settings2HYSShift & reg.Settings2HYSMask),
		ABIRES: uint8(raw >> reg.Settings2ABIRESShift & reg.Settings2ABIRESMask),
	}
}

func (r SETTINGS2) Raw() uint16 {
	return uint16(r.UVWPP)&reg.Settings2UVWPPMask |
		(uint16(r.HYS)&reg.Settings2HYSMask)<<reg.Settings2HYSShift |
		(uint16(r.ABIRES)&reg.Settings2ABIRESMask)<<reg.Settings2ABIRESShift
}
