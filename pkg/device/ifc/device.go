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

package ifc

import (
	"jinr.ru/greenlab/go-as5047p/pkg/device"
)

type Sensor interface {
	Init() error
	Close() error

	ReadRegister(addr uint16, opts device.ReadOptions) device.Result[uint16]
	ReadConsecutive(addr uint16, count int, opts device.ReadOptions) (device.Result[[]uint16], error)
	WriteRegister(addr, value uint16, opts device.WriteOptions) device.Result[bool]

	ReadMagnitude(opts device.ReadOptions) device.Result[uint16]
	ReadAngleRaw(withDAEC bool, opts device.ReadOptions) device.Result[uint16]
	ReadAngleDegree(withDAEC bool, opts device.ReadOptions) device.Result[float64]
	ReadStatus(opts device.ReadOptions) device.Status

	ReadZeroPosition(opts device.ReadOptions) device.Result[uint16]
	SetZeroPosition(raw uint16, opts device.WriteOptions) (device.Result[bool], error)

	GetName() string
}

var _ Sensor = &device.Sensor{}
