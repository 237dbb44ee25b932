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
	"net/http"

	"jinr.ru/greenlab/go-as5047p/pkg/device"
	"jinr.ru/greenlab/go-as5047p/pkg/reg"
	"jinr.ru/greenlab/go-as5047p/pkg/state"
)

// RegReading is one register read by the control server
type RegReading struct {
	Reg    reg.RegDesc
	Result device.Result[uint16]
}

type ControlServer interface {
	Run() error
	Handler() http.Handler

	ReadAngle(withDAEC bool) device.Result[uint16]
	ReadMagnitude() device.Result[uint16]
	ReadStatus() device.Status

	RegRead(desc reg.RegDesc) device.Result[uint16]
	RegReadAll() []RegReading
	RegWrite(desc reg.RegDesc, value uint16) (device.Result[bool], error)
	// RegCached returns the last values read, without bus access
	RegCached() ([]state.Reg, error)

	// Backup stores the non-volatile registers, Restore writes them back
	Backup() ([]state.Reg, device.ErrorInfo, error)
	Restore() ([]state.Reg, device.Result[bool], error)

	GetName() string
}

type ApiServer interface {
	Run() error
	Handler() http.Handler
}
