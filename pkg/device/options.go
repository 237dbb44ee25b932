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
	"jinr.ru/greenlab/go-as5047p/pkg/config"
)

// ReadOptions select the checks done around a register read
type ReadOptions struct {
	VerifyParity        bool `json:"verifyParity"`
	CheckForComError    bool `json:"checkForComError"`
	CheckForSensorError bool `json:"checkForSensorError"`
}

// WriteOptions select the checks done around a register write
type WriteOptions struct {
	CheckForComError bool `json:"checkForComError"`
	VerifyWrittenReg bool `json:"verifyWrittenReg"`
}

var (
	NoReadChecks  = ReadOptions{}
	NoWriteChecks = WriteOptions{}
)

func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		VerifyParity:        true,
		CheckForComError:    true,
		CheckForSensorError: true,
	}
}

func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		CheckForComError: true,
		VerifyWrittenReg: true,
	}
}

func ReadOptionsFrom(cfg *config.SensorConfig) ReadOptions {
	if cfg == nil {
		return DefaultReadOptions()
	}
	return ReadOptions{
		VerifyParity:        cfg.VerifyParity,
		CheckForComError:    cfg.CheckForComError,
		CheckForSensorError: cfg.CheckForSensorError,
	}
}

func WriteOptionsFrom(cfg *config.SensorConfig) WriteOptions {
	if cfg == nil {
		return DefaultWriteOptions()
	}
	return WriteOptions{
		CheckForComError: cfg.CheckForComError,
		VerifyWrittenReg: cfg.VerifyWrittenReg,
	}
}

// Result pairs the value of an operation with the faults seen while getting
// it. Value is filled in even when Errors is not empty; it is then the best
// the sensor could give and should not be trusted.
type Result[T any] struct {
	Value  T         `json:"value"`
	Errors ErrorInfo `json:"errors"`
}

func (r Result[T]) Ok() bool {
	return r.Errors.NoError()
}

func (r Result[T]) Err() error {
	return r.Errors.Err()
}
