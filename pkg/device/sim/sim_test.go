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

package sim

import (
	"errors"
	"testing"

	"jinr.ru/greenlab/go-as5047p/pkg/layers"
	"jinr.ru/greenlab/go-as5047p/pkg/reg"
	"jinr.ru/greenlab/go-as5047p/pkg/transport"
)

func newSim(t *testing.T) *Sensor {
	t.Helper()
	s := New()
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return s
}

func TestNotInitialized(t *testing.T) {
	s := New()
	_, err := s.TransferWord(layers.CommandWord(true, reg.NOP))
	var notInit transport.ErrNotInitialized
	if !errors.As(err, &notInit) {
		t.Errorf("TransferWord() error = %v, want ErrNotInitialized", err)
	}
}

func TestPipelinedReply(t *testing.T) {
	s := newSim(t)
	s.SetRegister(reg.MAG, 0x0123)

	rx, err := s.TransferWords([]uint16{
		layers.CommandWord(true, reg.MAG),
		layers.CommandWord(true, reg.NOP),
	})
	if err != nil {
		t.Fatalf("TransferWords() error = %v", err)
	}
	if rx[0] != layers.ReplyWord(0, false) {
		t.Errorf("first reply = 0x%04X, want the power-up reply", rx[0])
	}
	if rx[1] != layers.ReplyWord(0x0123, false) {
		t.Errorf("second reply = 0x%04X, want MAG 0x0123", rx[1])
	}
}

func TestWriteSequence(t *testing.T) {
	s := newSim(t)
	s.SetRegister(reg.SETTINGS2, 0x11)

	rx, err := s.TransferWords([]uint16{
		layers.CommandWord(false, reg.SETTINGS2),
		layers.WriteWord(0x1FF),
		layers.CommandWord(true, reg.NOP),
	})
	if err != nil {
		t.Fatalf("TransferWords() error = %v", err)
	}
	if rx[1] != layers.ReplyWord(0x11, false) {
		t.Errorf("reply to the write command = 0x%04X, want old content 0x11", rx[1])
	}
	if rx[2] != layers.ReplyWord(0xFF, false) {
		t.Errorf("reply to the data frame = 0x%04X, want new content 0xFF", rx[2])
	}
	if got := s.Register(reg.SETTINGS2); got != 0xFF {
		t.Errorf("SETTINGS2 = 0x%04X, want 0xFF", got)
	}
}

func TestErrorFlags(t *testing.T) {
	tests := []struct {
		name  string
		frame uint16
		want  uint16
	}{
		{name: "bad parity", frame: layers.CommandWord(true, reg.MAG) ^ 0x8000, want: reg.ErrflPARERR},
		{name: "unknown address", frame: layers.CommandWord(true, 0x1234), want: reg.ErrflINVCOMM},
		{name: "write to read-only", frame: layers.CommandWord(false, reg.ANGLECOM), want: reg.ErrflINVCOMM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSim(t)
			rx, err := s.TransferWords([]uint16{tt.frame, layers.CommandWord(true, reg.ERRFL), layers.CommandWord(true, reg.NOP)})
			if err != nil {
				t.Fatalf("TransferWords() error = %v", err)
			}
			if rx[1]&(1<<reg.ErrorBit) == 0 {
				t.Errorf("reply 0x%04X after a bad frame has no error flag", rx[1])
			}
			if got := rx[2] & reg.DataMask; got != tt.want {
				t.Errorf("ERRFL = 0x%04X, want 0x%04X", got, tt.want)
			}
			if got := s.Register(reg.ERRFL); got != 0 {
				t.Errorf("ERRFL = 0x%04X after reading it, want 0", got)
			}
		})
	}
}

func TestFaultInjection(t *testing.T) {
	s := newSim(t)
	s.CorruptRead(reg.MAG, 0x0001)
	rx, _ := s.TransferWords([]uint16{layers.CommandWord(true, reg.MAG), layers.CommandWord(true, reg.NOP)})
	if layers.IsEvenParity(rx[1]) {
		t.Errorf("corrupted reply 0x%04X has even parity", rx[1])
	}
	rx, _ = s.TransferWords([]uint16{layers.CommandWord(true, reg.MAG), layers.CommandWord(true, reg.NOP)})
	if !layers.IsEvenParity(rx[1]) {
		t.Errorf("corruption applied twice")
	}

	busErr := errors.New("bus fault")
	s.FailTransfers(busErr)
	if _, err := s.TransferWord(0); !errors.Is(err, busErr) {
		t.Errorf("TransferWord() error = %v, want %v", err, busErr)
	}
}
