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

package command

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-as5047p/pkg/command/ifc"
	"jinr.ru/greenlab/go-as5047p/pkg/config"
	"jinr.ru/greenlab/go-as5047p/pkg/srv/control"
)

// ErrSensor returned when the control server answered but the sensor
// operation reported faults. The decoded response is still returned.
type ErrSensor struct {
	Msg string
}

func (e ErrSensor) Error() string {
	return fmt.Sprintf("Sensor operation failed: %s", e.Msg)
}

type ApiClient struct {
	ApiPrefix string
}

var _ ifc.ApiClient = &ApiClient{}

func NewApiClient(cfg *config.Config) *ApiClient {
	return NewApiClientWithPrefix(fmt.Sprintf("http://%s:%d/api", cfg.Api.Address, cfg.Api.Port))
}

func NewApiClientWithPrefix(prefix string) *ApiClient {
	return &ApiClient{ApiPrefix: strings.TrimSuffix(prefix, "/")}
}

// decode puts the body into v. 502 carries a diagnostic body, any other
// non 200 status is a plain error.
func decode(r *req.Resp, v interface{}, diag func() control.Diag) error {
	code := r.Response().StatusCode
	if code != http.StatusOK && code != http.StatusBadGateway {
		return errors.New(strings.TrimSpace(fmt.Sprintf("%s: %s", r.Response().Status, r.String())))
	}
	if err := r.ToJSON(v); err != nil {
		return err
	}
	if code == http.StatusBadGateway {
		return ErrSensor{Msg: diag().Error}
	}
	return nil
}

func (c *ApiClient) get(path string, v interface{}, diag func() control.Diag, params ...interface{}) error {
	r, err := req.Get(c.ApiPrefix+path, params...)
	if err != nil {
		return err
	}
	return decode(r, v, diag)
}

func (c *ApiClient) post(path string, v interface{}, diag func() control.Diag, params ...interface{}) error {
	r, err := req.Post(c.ApiPrefix+path, params...)
	if err != nil {
		return err
	}
	return decode(r, v, diag)
}

// Angle requests the compensated or the uncorrected angle
func (c *ApiClient) Angle(withDAEC bool) (*control.AngleResp, error) {
	resp := &control.AngleResp{}
	err := c.get("/angle", resp, func() control.Diag { return resp.Diag }, req.QueryParam{"daec": strconv.FormatBool(withDAEC)})
	return resp, err
}

func (c *ApiClient) Magnitude() (*control.MagnitudeResp, error) {
	resp := &control.MagnitudeResp{}
	err := c.get("/magnitude", resp, func() control.Diag { return resp.Diag })
	return resp, err
}

func (c *ApiClient) Status() (*control.StatusResp, error) {
	resp := &control.StatusResp{}
	err := c.get("/status", resp, func() control.Diag { return resp.Diag })
	return resp, err
}

// RegRead reads one register by name or hexadecimal address
func (c *ApiClient) RegRead(name string) (*control.RegResp, error) {
	resp := &control.RegResp{}
	err := c.get(fmt.Sprintf("/reg/r/%s", name), resp, func() control.Diag { return resp.Diag })
	return resp, err
}

func (c *ApiClient) RegReadAll() (*control.RegsResp, error) {
	resp := &control.RegsResp{}
	err := c.get("/reg/r", resp, func() control.Diag { return resp.Diag })
	return resp, err
}

// RegWrite writes a value to a register given by name or hexadecimal address
func (c *ApiClient) RegWrite(name, value string) (*control.RegResp, error) {
	body := &control.RegHex{Name: name, Value: value}
	if strings.HasPrefix(strings.ToLower(name), "0x") {
		body = &control.RegHex{Addr: name, Value: value}
	}
	resp := &control.RegResp{}
	err := c.post("/reg/w", resp, func() control.Diag { return resp.Diag }, req.BodyJSON(body))
	return resp, err
}

// RegCached returns what the control server last read, without bus access
func (c *ApiClient) RegCached() (*control.RegsResp, error) {
	resp := &control.RegsResp{}
	err := c.get("/reg/cached", resp, func() control.Diag { return resp.Diag })
	return resp, err
}

func (c *ApiClient) Backup() (*control.RegsResp, error) {
	resp := &control.RegsResp{}
	err := c.post("/backup", resp, func() control.Diag { return resp.Diag })
	return resp, err
}

func (c *ApiClient) Restore() (*control.RegsResp, error) {
	resp := &control.RegsResp{}
	err := c.post("/restore", resp, func() control.Diag { return resp.Diag })
	return resp, err
}
