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

package state

import (
	"fmt"
	"strconv"
)

// Reg is a register address with its value
type Reg struct {
	Addr  uint16
	Value uint16
}

// Hex returns address and value as 0x prefixed hexadecimal strings
func (r Reg) Hex() (string, string) {
	return fmt.Sprintf("0x%04x", r.Addr), fmt.Sprintf("0x%04x", r.Value)
}

// NewRegFromHex parses address and value. Both accept any strconv base prefix.
func NewRegFromHex(addr, value string) (Reg, error) {
	a, err := strconv.ParseUint(addr, 0, 16)
	if err != nil {
		return Reg{}, fmt.Errorf("bad register address %q: %w", addr, err)
	}
	v, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return Reg{}, fmt.Errorf("bad register value %q: %w", value, err)
	}
	return Reg{Addr: uint16(a), Value: uint16(v)}, nil
}
