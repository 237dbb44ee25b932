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

func NewAngleCommand() *cobra.Command {
	var daec, degree bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "angle",
		Short: "Read the angle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, cmd, func(regrw *sensorcmd.RegRW) error {
				return regrw.Angle(daec, degree)
			})
		},
	}
	cmd.Flags().BoolVar(&daec, DAECOptionName, true, "Read the dynamic angle error compensated angle")
	cmd.Flags().BoolVar(&degree, DegreeOptionName, false, "Print the angle in degrees")
	addSimulateFlag(cmd, cfg)

	return cmd
}

func NewMagnitudeCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "magnitude",
		Short: "Read the CORDIC magnitude",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, cmd, func(regrw *sensorcmd.RegRW) error {
				return regrw.Magnitude()
			})
		},
	}
	addSimulateFlag(cmd, cfg)

	return cmd
}
