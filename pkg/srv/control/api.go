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

// go-as5047p API
//
// # RESTful API to read and configure an AS5047P sensor
//
// Every response that involved the sensor carries the error descriptor of
// the operation. Failed sensor operations are answered with 502.
//
// Terms Of Service:
//
// Schemes: http
// Host: localhost:8047
// Version: 1.0.0
// Contact:
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jinr.ru/greenlab/go-as5047p/pkg/config"
	"jinr.ru/greenlab/go-as5047p/pkg/device"
	"jinr.ru/greenlab/go-as5047p/pkg/log"
	"jinr.ru/greenlab/go-as5047p/pkg/reg"
	"jinr.ru/greenlab/go-as5047p/pkg/srv/control/ifc"
	"jinr.ru/greenlab/go-as5047p/pkg/state"
)

// Success response
// swagger:response okResp
type RespOk struct {
	// in:body
	Body struct {
		// HTTP status code 200 - OK
		Code int `json:"code"`
	}
}

// Error Bad Request
// swagger:response badReq
type ReqBadRequest struct {
	// in:body
	Body struct {
		// HTTP status code 400 - Bad Request
		Code int `json:"code"`
	}
}

// Unknown register or no backup stored
// swagger:response notFound
type RespNotFound struct {
	// in:body
	Body struct {
		// HTTP status code 404 - Not Found
		Code int `json:"code"`
	}
}

// The sensor operation failed, the body carries the error descriptor
// swagger:response sensorErr
type RespSensorError struct {
	// in:body
	Body Diag
}

// RegHex ...
type RegHex struct {
	Name  string `json:"name,omitempty"`
	Addr  string `json:"addr,omitempty"` // hexadecimal
	Value string `json:"value"`          // hexadecimal
}

func regHex(name string, addr, value uint16) RegHex {
	hexAddr, hexValue := state.Reg{Addr: addr, Value: value}.Hex()
	return RegHex{Name: name, Addr: hexAddr, Value: hexValue}
}

// Diag is the outcome of a sensor operation
type Diag struct {
	Ok     bool             `json:"ok"`
	Errors device.ErrorInfo `json:"errors"`
	Error  string           `json:"error,omitempty"`
}

func NewDiag(info device.ErrorInfo) Diag {
	d := Diag{Ok: info.NoError(), Errors: info}
	if err := info.Err(); err != nil {
		d.Error = err.Error()
	}
	return d
}

type AngleResp struct {
	Raw    uint16  `json:"raw"`
	Degree float64 `json:"degree"`
	DAEC   bool    `json:"daec"`
	Diag
}

type MagnitudeResp struct {
	Magnitude uint16 `json:"magnitude"`
	Diag
}

type StatusResp struct {
	Status device.Status `json:"status"`
	Text   string        `json:"text"`
	Diag
}

type RegResp struct {
	RegHex
	Diag
}

type RegsResp struct {
	Regs []RegHex `json:"regs"`
	Diag
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	ctrl ifc.ControlServer
	once sync.Once
}

var _ ifc.ApiServer = &ApiServer{}

func NewApiServer(ctx context.Context, cfg *config.Config, ctrl ifc.ControlServer) (ifc.ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.Api.Address, cfg.Api.Port)

	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		ctrl:    ctrl,
	}
	return s, nil
}

// Handler returns the router with all routes configured
func (s *ApiServer) Handler() http.Handler {
	s.once.Do(s.configureRouter)
	return s.Router
}

// Run serves the API until the context is done
func (s *ApiServer) Run() error {
	log.Info("Starting API server: address: %s port: %d", s.Config.Api.Address, s.Config.Api.Port)
	accessLog := log.Writer()
	defer accessLog.Close()

	httpServer := &http.Server{
		Handler: handlers.RecoveryHandler()(handlers.LoggingHandler(accessLog, s.Handler())),
		Addr:    s.Config.Api.Addr(),
	}
	go func() {
		<-s.Done()
		httpServer.Shutdown(context.Background())
	}()
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	// swagger:operation GET /angle
	// ---
	// summary: read angle
	// description: daec=false reads ANGLEUNC instead of ANGLECOM
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "400":
	//     "$ref": "#/responses/badReq"
	//   "502":
	//     "$ref": "#/responses/sensorErr"
	subRouter.HandleFunc("/angle", s.handleAngle()).Methods("GET")
	// swagger:operation GET /magnitude
	// ---
	// summary: read CORDIC magnitude
	// description:
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "502":
	//     "$ref": "#/responses/sensorErr"
	subRouter.HandleFunc("/magnitude", s.handleMagnitude()).Methods("GET")
	// swagger:operation GET /status
	// ---
	// summary: read ERRFL, PROG and DIAAGC
	// description:
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "502":
	//     "$ref": "#/responses/sensorErr"
	subRouter.HandleFunc("/status", s.handleStatus()).Methods("GET")
	// swagger:operation GET /reg/r
	// ---
	// summary: read all registers
	// description:
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "502":
	//     "$ref": "#/responses/sensorErr"
	subRouter.HandleFunc("/reg/r", s.handleRegReadAll()).Methods("GET")
	// swagger:operation GET /reg/r/{name}
	// ---
	// summary: read register
	// description: name is a register name or a hexadecimal address
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "404":
	//     "$ref": "#/responses/notFound"
	//   "502":
	//     "$ref": "#/responses/sensorErr"
	subRouter.HandleFunc("/reg/r/{name}", s.handleRegRead()).Methods("GET")
	// swagger:operation POST /reg/w
	// ---
	// summary: write register
	// description:
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "400":
	//     "$ref": "#/responses/badReq"
	//   "404":
	//     "$ref": "#/responses/notFound"
	//   "502":
	//     "$ref": "#/responses/sensorErr"
	subRouter.HandleFunc("/reg/w", s.handleRegWrite()).Methods("POST")
	// swagger:operation GET /reg/cached
	// ---
	// summary: last values read or written
	// description:
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	subRouter.HandleFunc("/reg/cached", s.handleRegCached()).Methods("GET")
	// swagger:operation POST /backup
	// ---
	// summary: store non-volatile registers
	// description:
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "502":
	//     "$ref": "#/responses/sensorErr"
	subRouter.HandleFunc("/backup", s.handleBackup()).Methods("POST")
	// swagger:operation POST /restore
	// ---
	// summary: write stored registers back
	// description:
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "404":
	//     "$ref": "#/responses/notFound"
	//   "502":
	//     "$ref": "#/responses/sensorErr"
	subRouter.HandleFunc("/restore", s.handleRestore()).Methods("POST")
	s.Router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// encode writes v as JSON; ok false turns the status into 502
func encode(w http.ResponseWriter, ok bool, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusBadGateway)
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response: %s", err)
	}
}

func (s *ApiServer) handleAngle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		daec := true
		if v := r.URL.Query().Get("daec"); v != "" {
			var err error
			daec, err = strconv.ParseBool(v)
			if err != nil {
				http.Error(w, fmt.Sprintf("Wrong daec value: %s", v), http.StatusBadRequest)
				return
			}
		}
		log.Debug("Handling angle request: daec: %t", daec)

		res := s.ctrl.ReadAngle(daec)
		deg, _ := device.AngleToDegree(res.Value)
		encode(w, res.Ok(), &AngleResp{
			Raw:    res.Value,
			Degree: deg,
			DAEC:   daec,
			Diag:   NewDiag(res.Errors),
		})
	}
}

func (s *ApiServer) handleMagnitude() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling magnitude request")
		res := s.ctrl.ReadMagnitude()
		encode(w, res.Ok(), &MagnitudeResp{Magnitude: res.Value, Diag: NewDiag(res.Errors)})
	}
}

func (s *ApiServer) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling status request")
		st := s.ctrl.ReadStatus()
		encode(w, st.Ok(), &StatusResp{Status: st, Text: st.String(), Diag: NewDiag(st.Errors)})
	}
}

func (s *ApiServer) handleRegRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling reg read request: reg: %s", vars["name"])

		desc, err := reg.ByName(vars["name"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		res := s.ctrl.RegRead(desc)
		encode(w, res.Ok(), &RegResp{
			RegHex: regHex(desc.Name, desc.Addr, res.Value),
			Diag:   NewDiag(res.Errors),
		})
	}
}

func (s *ApiServer) handleRegReadAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling reg read all request")
		resp := &RegsResp{Regs: []RegHex{}}
		var info device.ErrorInfo
		for _, reading := range s.ctrl.RegReadAll() {
			resp.Regs = append(resp.Regs, regHex(reading.Reg.Name, reading.Reg.Addr, reading.Result.Value))
			if info.NoError() && !reading.Result.Ok() {
				info = reading.Result.Errors
			}
		}
		resp.Diag = NewDiag(info)
		encode(w, resp.Ok, resp)
	}
}

func (s *ApiServer) handleRegWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &RegHex{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling reg write request: reg: %s addr: %s value: %s", req.Name, req.Addr, req.Value)

		key := req.Name
		if key == "" {
			key = req.Addr
		}
		desc, err := reg.ByName(key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		value, err := strconv.ParseUint(req.Value, 0, reg.PayloadBits)
		if err != nil {
			http.Error(w, fmt.Sprintf("Wrong register value: %s", req.Value), http.StatusBadRequest)
			return
		}

		res, err := s.ctrl.RegWrite(desc, uint16(value))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		encode(w, res.Value, &RegResp{
			RegHex: regHex(desc.Name, desc.Addr, uint16(value)),
			Diag:   NewDiag(res.Errors),
		})
	}
}

func (s *ApiServer) handleRegCached() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling cached registers request")
		regs, err := s.ctrl.RegCached()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp := &RegsResp{Regs: []RegHex{}, Diag: Diag{Ok: true}}
		for _, cached := range regs {
			name := ""
			if desc, err := reg.ByAddr(cached.Addr); err == nil {
				name = desc.Name
			}
			resp.Regs = append(resp.Regs, regHex(name, cached.Addr, cached.Value))
		}
		encode(w, true, resp)
	}
}

func regsHex(regs []state.Reg) []RegHex {
	result := []RegHex{}
	for _, r := range regs {
		desc, _ := reg.ByAddr(r.Addr)
		result = append(result, regHex(desc.Name, r.Addr, r.Value))
	}
	return result
}

func (s *ApiServer) handleBackup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling backup request")
		regs, info, err := s.ctrl.Backup()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		encode(w, info.NoError(), &RegsResp{Regs: regsHex(regs), Diag: NewDiag(info)})
	}
}

func (s *ApiServer) handleRestore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling restore request")
		regs, res, err := s.ctrl.Restore()
		if err != nil {
			var noBackup ErrNoBackup
			if errors.As(err, &noBackup) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		encode(w, res.Value, &RegsResp{Regs: regsHex(regs), Diag: NewDiag(res.Errors)})
	}
}
