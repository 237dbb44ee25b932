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
package sensor

import (
	"github.com/spf13/cobra"

	sensorcmd "jinr.ru/greenlab/go-as5047p/pkg/cmd"
	"jinr.ru/greenlab/go-as5047p/pkg/config"
)

func NewStatusCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Dump every register of the sensor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, cmd, func(regrw *sensorcmd.RegRW) error {
				return regrw.Status()
			})
		},
	}
	addSimulateFlag(cmd, cfg)

	return cmd
}

func NewZeroCommand() *cobra.Command {
	var value string
	var degree bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "zero",
		Short: "Read or set the zero position (raw 14-bit angle or degrees)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, cmd, func(regrw *sensorcmd.RegRW) error {
				return regrw.Zero(value, degree)
			})
		},
	}
	cmd.Flags().StringVar(&value, SetOptionName, "", "Zero position to set, e.g. 0x2abc or 90.5 with --degree")
	cmd.Flags().BoolVar(&degree, DegreeOptionName, false, "Zero position in degrees")
	addSimulateFlag(cmd, cfg)

	return cmd
}
