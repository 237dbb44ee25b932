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
	"jinr.ru/greenlab/go-as5047p/pkg/srv/control"
)

type ApiClient interface {
	Angle(withDAEC bool) (*control.AngleResp, error)
	Magnitude() (*control.MagnitudeResp, error)
	Status() (*control.StatusResp, error)
	RegRead(name string) (*control.RegResp, error)
	RegReadAll() (*control.RegsResp, error)
	RegWrite(name, value string) (*control.RegResp, error)
	RegCached() (*control.RegsResp, error)
	Backup() (*control.RegsResp, error)
	Restore() (*control.RegsResp, error)
}
