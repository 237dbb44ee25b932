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
	"testing"
)

func TestAngleToDegree(t *testing.T) {
	tests := []struct {
		raw     uint16
		want    float64
		wantErr bool
	}{
		{raw: 0, want: 0},
		{raw: 4096, want: 90},
		{raw: 8192, want: 180},
		{raw: 12288, want: 270},
		{raw: 16383, want: 360.0 * 16383 / 16384},
		{raw: 16384, wantErr: true},
		{raw: 0xFFFF, wantErr: true},
	}

	for _, tt := range tests {
		got, err := AngleToDegree(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("AngleToDegree(%d) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleToDegree(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestDegreeToAngle(t *testing.T) {
	tests := []struct {
		deg  float64
		want uint16
	}{
		{deg: 0, want: 0},
		{deg: 90, want: 4096},
		{deg: 180, want: 8192},
		{deg: 360, want: 0},
		{deg: -90, want: 12288},
		{deg: 359.999, want: 0},
	}

	for _, tt := range tests {
		if got := DegreeToAngle(tt.deg); got != tt.want {
			t.Errorf("DegreeToAngle(%v) = %d, want %d", tt.deg, got, tt.want)
		}
	}
}

func TestReadAngleDegreeMonotonic(t *testing.T) {
	s, bus := newTestSensor(t)
	for _, withDAEC := range []bool{true, false} {
		prev := -1.0
		for raw := uint16(0); raw <= MaxAngle; raw++ {
			bus.SetAngle(raw)
			r := s.ReadAngleDegree(withDAEC, NoReadChecks)
			if !r.Ok() {
				t.Fatalf("ReadAngleDegree() errors = %v", r.Err())
			}
			if r.Value < prev || r.Value >= 360 {
				t.Fatalf("raw %d: %v degrees after %v", raw, r.Value, prev)
			}
			prev = r.Value
		}
	}
}

func TestReadAngleSelectsRegister(t *testing.T) {
	s, bus := newTestSensor(t)
	bus.SetRegister(0x3FFF, 100)
	bus.SetRegister(0x3FFE, 200)

	if r := s.ReadAngleRaw(true, DefaultReadOptions()); r.Value != 100 {
		t.Errorf("ReadAngleRaw(DAEC) = %d, want 100", r.Value)
	}
	if r := s.ReadAngleRaw(false, DefaultReadOptions()); r.Value != 200 {
		t.Errorf("ReadAngleRaw(no DAEC) = %d, want 200", r.Value)
	}
}
