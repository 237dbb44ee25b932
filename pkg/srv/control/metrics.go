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

package control

import (
	"github.com/prometheus/client_golang/prometheus"

	"jinr.ru/greenlab/go-as5047p/pkg/device"
)

var (
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "as5047p_operations_total",
			Help: "Sensor operations by kind",
		},
		[]string{"sensor", "op"},
	)

	Faults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "as5047p_faults_total",
			Help: "Faults reported by the protocol engine by kind",
		},
		[]string{"sensor", "kind"},
	)

	AngleDegrees = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "as5047p_angle_degrees",
		Help: "Last angle read",
	}, []string{"sensor"})

	Magnitude = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "as5047p_magnitude",
		Help: "Last CORDIC magnitude read",
	}, []string{"sensor"})

	AGC = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "as5047p_agc",
		Help: "Last automatic gain control value read",
	}, []string{"sensor"})

	OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "as5047p_operation_duration_seconds",
		Help:    "Time spent on the bus per operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(
		Operations,
		Faults,
		AngleDegrees,
		Magnitude,
		AGC,
		OperationDuration,
	)
}

// countFaults adds one to the counter of every fault kind in info
func countFaults(sensor string, info device.ErrorInfo) {
	kinds := map[string]bool{
		"transfer":                 info.Controller.TransferFailed,
		"parity_mismatch":          info.Controller.ParityError,
		"write_verify":             info.Controller.WriteVerifyFailed,
		"framing":                  info.Sensor.FramingError,
		"invalid_command":          info.Sensor.InvalidCommand,
		"sensor_parity":            info.Sensor.ParityError,
		"offset_comp_not_finished": info.Sensor.OffsetCompNotFinished,
		"cordic_overflow":          info.Sensor.CordicOverflow,
		"mag_too_high":             info.Sensor.MagTooHigh,
		"mag_too_low":              info.Sensor.MagTooLow,
	}
	for kind, set := range kinds {
		if set {
			Faults.WithLabelValues(sensor, kind).Inc()
		}
	}
}
