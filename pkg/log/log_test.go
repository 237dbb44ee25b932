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

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{level: "error"},
		{level: "warning"},
		{level: "info"},
		{level: "debug"},
		{level: "trace", wantErr: true},
		{level: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := SetLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "warning")
	defer Init(&bytes.Buffer{}, "info")

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warning("warning %d", 3)
	Error("error %d", 4)

	out := buf.String()
	for _, unwanted := range []string{"debug 1", "info 2"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("output contains %q at warning level: %s", unwanted, out)
		}
	}
	for _, wanted := range []string{"warning 3", "error 4", LogPrefix} {
		if !strings.Contains(out, wanted) {
			t.Errorf("output does not contain %q: %s", wanted, out)
		}
	}
}

func TestInitPanicsOnWrongLevel(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Init() with wrong level did not panic")
		}
		SetLevel("info")
	}()
	Init(&bytes.Buffer{}, "loud")
}
