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
package reg

import (
	"github.com/spf13/cobra"

	sensorcmd "jinr.ru/greenlab/go-as5047p/pkg/cmd"
	"jinr.ru/greenlab/go-as5047p/pkg/config"
)

func NewGetCommand() *cobra.Command {
	var regName string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get reg value. All registers if no register is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			regrw, err := sensorcmd.NewRegRW(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer regrw.Close()
			if regName == "" {
				return regrw.RegReadAll()
			}
			return regrw.RegRead(regName)
		},
	}
	cmd.Flags().StringVar(&regName, RegOptionName, "", "Register name or address, e.g. SETTINGS1 or 0x0018")
	cmd.Flags().BoolVar(&cfg.Spi.Simulate, SimulateOptionName, cfg.Spi.Simulate, "Use the simulated sensor")

	return cmd
}
