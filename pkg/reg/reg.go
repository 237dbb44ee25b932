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

// Package reg holds the AS5047P register map. Addresses, bit positions and
// masks are taken from the AS5047P datasheet (rev 1-09, figures 23-34).
package reg

import (
	"fmt"
	"sort"
	"strings"
)

// Frame layout shared by command and data frames
const (
	ParityBit   = 15
	RWBit       = 14 // command frame: 1 = read, 0 = write
	ErrorBit    = 14 // read data frame: error flag
	AddrMask    = 0x3FFF
	DataMask    = 0x3FFF
	PayloadBits = 14
)

type RegAlias int

const (
	RegNOP RegAlias = iota
	RegERRFL
	RegPROG
	RegDIAAGC
	RegMAG
	RegANGLEUNC
	RegANGLECOM
	RegZPOSM
	RegZPOSL
	RegSETTINGS1
	RegSETTINGS2
	RegAliasLimit
)

// Volatile registers
const (
	NOP      uint16 = 0x0000
	ERRFL    uint16 = 0x0001
	PROG     uint16 = 0x0003
	DIAAGC   uint16 = 0x3FFC
	MAG      uint16 = 0x3FFD
	ANGLEUNC uint16 = 0x3FFE
	ANGLECOM uint16 = 0x3FFF
)

// Non-volatile registers
const (
	ZPOSM     uint16 = 0x0016
	ZPOSL     uint16 = 0x0017
	SETTINGS1 uint16 = 0x0018
	SETTINGS2 uint16 = 0x0019
)

// ERRFL bits. The register is cleared by reading it.
const (
	ErrflFRERR   uint16 = 1 << 0
	ErrflINVCOMM uint16 = 1 << 1
	ErrflPARERR  uint16 = 1 << 2
)

// PROG bits
const (
	ProgPROGEN  uint16 = 1 << 0
	ProgOTPREF  uint16 = 1 << 2
	ProgPROGOTP uint16 = 1 << 3
	ProgPROGVER uint16 = 1 << 6
)

// DIAAGC bits
const (
	DiaagcAGCMask uint16 = 0x00FF
	DiaagcLF      uint16 = 1 << 8
	DiaagcCOF     uint16 = 1 << 9
	DiaagcMAGH    uint16 = 1 << 10
	DiaagcMAGL    uint16 = 1 << 11
)

// ZPOSM / ZPOSL fields. The 14-bit zero position is split into ZPOSM
// (bits 13..6) and ZPOSL (bits 5..0).
const (
	ZposmZPOSMMask    uint16 = 0x00FF
	ZposlZPOSLMask    uint16 = 0x003F
	ZposlCompLErrorEn uint16 = 1 << 6
	ZposlCompHErrorEn uint16 = 1 << 7
)

const ZeroPositionLowBits = 6

// SETTINGS1 bits
const (
	Settings1Factory    uint16 = 1 << 0
	Settings1NOISESET   uint16 = 1 << 1
	Settings1DIR        uint16 = 1 << 2
	Settings1UVWABI     uint16 = 1 << 3
	Settings1DAECDIS    uint16 = 1 << 4
	Settings1ABIBIN     uint16 = 1 << 5
	Settings1DATASELECT uint16 = 1 << 6
	Settings1PWMON      uint16 = 1 << 7
)

// SETTINGS2 fields
const (
	Settings2UVWPPMask  uint16 = 0x0007
	Settings2HYSMask    uint16 = 0x0003
	Settings2ABIRESMask uint16 = 0x0007
)

const (
	Settings2HYSShift    = 3
	Settings2ABIRESShift = 5
)

// RegDesc describes one register of the map.
//
// Mask covers the bits of the 14-bit payload the register defines. WriteMask
// covers the bits a write may set, VerifyMask the written bits that must read
// back unchanged (self-clearing and factory bits are left out).
type RegDesc struct {
	Name        string
	Addr        uint16
	Mask        uint16
	WriteMask   uint16
	VerifyMask  uint16
	NonVolatile bool
}

// Writable reports whether the register accepts write frames.
func (d RegDesc) Writable() bool {
	return d.WriteMask != 0
}

func (d RegDesc) String() string {
	return fmt.Sprintf("%s(0x%04X)", d.Name, d.Addr)
}

var RegMap = map[RegAlias]RegDesc{
	RegNOP:       {Name: "NOP", Addr: NOP},
	RegERRFL:     {Name: "ERRFL", Addr: ERRFL, Mask: 0x0007},
	RegPROG:      {Name: "PROG", Addr: PROG, Mask: 0x004D, WriteMask: 0x004D, VerifyMask: ProgPROGEN | ProgPROGVER},
	RegDIAAGC:    {Name: "DIAAGC", Addr: DIAAGC, Mask: 0x0FFF},
	RegMAG:       {Name: "MAG", Addr: MAG, Mask: DataMask},
	RegANGLEUNC:  {Name: "ANGLEUNC", Addr: ANGLEUNC, Mask: DataMask},
	RegANGLECOM:  {Name: "ANGLECOM", Addr: ANGLECOM, Mask: DataMask},
	RegZPOSM:     {Name: "ZPOSM", Addr: ZPOSM, Mask: 0x00FF, WriteMask: 0x00FF, VerifyMask: 0x00FF, NonVolatile: true},
	RegZPOSL:     {Name: "ZPOSL", Addr: ZPOSL, Mask: 0x00FF, WriteMask: 0x00FF, VerifyMask: 0x00FF, NonVolatile: true},
	RegSETTINGS1: {Name: "SETTINGS1", Addr: SETTINGS1, Mask: 0x00FF, WriteMask: 0x00FF, VerifyMask: 0x00FE, NonVolatile: true},
	RegSETTINGS2: {Name: "SETTINGS2", Addr: SETTINGS2, Mask: 0x00FF, WriteMask: 0x00FF, VerifyMask: 0x00FF, NonVolatile: true},
}

// ErrUnknownReg returned when a register name or address is not part of the map
type ErrUnknownReg struct {
	What string
}

func (e ErrUnknownReg) Error() string {
	return fmt.Sprintf("Unknown AS5047P register: %s", e.What)
}

// ByAddr returns the descriptor of the register at addr
func ByAddr(addr uint16) (RegDesc, error) {
	for _, d := range RegMap {
		if d.Addr == addr {
			return d, nil
		}
	}
	return RegDesc{}, ErrUnknownReg{What: fmt.Sprintf("0x%04X", addr)}
}

// ByName looks a register up by its datasheet name, case-insensitive.
// Hexadecimal addresses like 0x3FFF are accepted as well.
func ByName(name string) (RegDesc, error) {
	for _, d := range RegMap {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	var addr uint16
	if _, err := fmt.Sscanf(name, "0x%x", &addr); err == nil {
		return ByAddr(addr)
	}
	return RegDesc{}, ErrUnknownReg{What: name}
}

// All returns every register except NOP ordered by alias
func All() []RegDesc {
	var regs []RegDesc
	for alias := RegERRFL; alias < RegAliasLimit; alias++ {
		regs = append(regs, RegMap[alias])
	}
	return regs
}

// NonVolatile returns the OTP backed registers ordered by address
func NonVolatile() []RegDesc {
	var regs []RegDesc
	for _, d := range RegMap {
		if d.NonVolatile {
			regs = append(regs, d)
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Addr < regs[j].Addr })
	return regs
}
