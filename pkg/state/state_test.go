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
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestState(t *testing.T) *RegState {
	t.Helper()
	s, err := NewRegState(context.Background(), filepath.Join(t.TempDir(), "db", "state.db"), "as5047p")
	if err != nil {
		t.Fatalf("NewRegState() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetReg(t *testing.T) {
	s := newTestState(t)
	if err := s.SetReg(Reg{Addr: 0x3FFF, Value: 0x1234}, "as5047p"); err != nil {
		t.Fatalf("SetReg() error = %v", err)
	}
	if err := s.SetReg(Reg{Addr: 0x0016, Value: 0x00AB}, "as5047p"); err != nil {
		t.Fatalf("SetReg() error = %v", err)
	}

	reg, err := s.GetReg(0x3FFF, "as5047p")
	if err != nil {
		t.Fatalf("GetReg() error = %v", err)
	}
	if reg.Value != 0x1234 {
		t.Errorf("GetReg() = 0x%04X, want 0x1234", reg.Value)
	}

	regs, err := s.GetRegAll("as5047p")
	if err != nil {
		t.Fatalf("GetRegAll() error = %v", err)
	}
	want := []Reg{{Addr: 0x0016, Value: 0x00AB}, {Addr: 0x3FFF, Value: 0x1234}}
	if len(regs) != len(want) {
		t.Fatalf("GetRegAll() = %v, want %v", regs, want)
	}
	for i := range want {
		if regs[i] != want[i] {
			t.Errorf("GetRegAll()[%d] = %v, want %v", i, regs[i], want[i])
		}
	}
}

func TestGetRegErrors(t *testing.T) {
	s := newTestState(t)

	_, err := s.GetReg(0x0018, "as5047p")
	var notFound ErrRegNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("GetReg() of a missing register error = %v, want ErrRegNotFound", err)
	}

	_, err = s.GetReg(0x0018, "other")
	var noBucket ErrBucketNotFound
	if !errors.As(err, &noBucket) {
		t.Errorf("GetReg() of an unknown sensor error = %v, want ErrBucketNotFound", err)
	}
}

func TestBackupRestore(t *testing.T) {
	s := newTestState(t)
	first := []Reg{{Addr: 0x0016, Value: 1}, {Addr: 0x0017, Value: 2}, {Addr: 0x0018, Value: 3}}
	if err := s.Backup(first, "as5047p"); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	second := []Reg{{Addr: 0x0019, Value: 4}, {Addr: 0x0016, Value: 5}}
	if err := s.Backup(second, "as5047p"); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	regs, err := s.Restore("as5047p")
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	want := []Reg{{Addr: 0x0016, Value: 5}, {Addr: 0x0019, Value: 4}}
	if len(regs) != len(want) {
		t.Fatalf("Restore() = %v, want %v", regs, want)
	}
	for i := range want {
		if regs[i] != want[i] {
			t.Errorf("Restore()[%d] = %v, want %v", i, regs[i], want[i])
		}
	}
}

func TestNewRegFromHex(t *testing.T) {
	tests := []struct {
		addr, value string
		want        Reg
		wantErr     bool
	}{
		{addr: "0x0016", value: "0xab", want: Reg{Addr: 0x16, Value: 0xAB}},
		{addr: "0x3FFF", value: "12", want: Reg{Addr: 0x3FFF, Value: 12}},
		{addr: "zpos", value: "1", wantErr: true},
		{addr: "0x16", value: "0x10000", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NewRegFromHex(tt.addr, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewRegFromHex(%q, %q) error = %v, wantErr %v", tt.addr, tt.value, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NewRegFromHex(%q, %q) = %v, want %v", tt.addr, tt.value, got, tt.want)
		}
	}

	addr, value := Reg{Addr: 0x3FFF, Value: 0xAB}.Hex()
	if addr != "0x3fff" || value != "0x00ab" {
		t.Errorf("Hex() = %s %s", addr, value)
	}
}
