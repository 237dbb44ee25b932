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

	"jinr.ru/greenlab/go-as5047p/cmd/reg"
	sensorcmd "jinr.ru/greenlab/go-as5047p/pkg/cmd"
	"jinr.ru/greenlab/go-as5047p/pkg/config"
)

const (
	DAECOptionName     = "daec"
	DegreeOptionName   = "degree"
	SetOptionName      = "set"
	SimulateOptionName = "sim"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensor",
		Short: "Access the sensor directly, without the control server",
	}
	cmd.AddCommand(NewAngleCommand())
	cmd.AddCommand(NewMagnitudeCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewZeroCommand())
	cmd.AddCommand(NewBackupCommand())
	cmd.AddCommand(NewRestoreCommand())
	cmd.AddCommand(reg.NewCommand())
	return cmd
}

// run opens the sensor for one command and closes it afterwards
func run(cfg *config.Config, cmd *cobra.Command, f func(regrw *sensorcmd.RegRW) error) error {
	regrw, err := sensorcmd.NewRegRW(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer regrw.Close()
	return f(regrw)
}

func addSimulateFlag(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().BoolVar(&cfg.Spi.Simulate, SimulateOptionName, cfg.Spi.Simulate, "Use the simulated sensor")
}
