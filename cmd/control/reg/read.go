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
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-as5047p/pkg/command"
	"jinr.ru/greenlab/go-as5047p/pkg/config"
	"jinr.ru/greenlab/go-as5047p/pkg/srv/control"
)

func printRegs(out io.Writer, regs []control.RegHex) {
	for _, reg := range regs {
		fmt.Fprintf(out, "Register state: %s (%s) = %s\n", reg.Name, reg.Addr, reg.Value)
	}
}

func NewReadCommand() *cobra.Command {
	var regName string
	var cached bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read value from register. All registers if no register is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			if cached {
				resp, err := apiClient.RegCached()
				if err != nil {
					return err
				}
				printRegs(cmd.OutOrStdout(), resp.Regs)
				return nil
			}
			if regName != "" {
				resp, err := apiClient.RegRead(regName)
				if err != nil {
					return err
				}
				printRegs(cmd.OutOrStdout(), []control.RegHex{resp.RegHex})
				return nil
			}
			resp, err := apiClient.RegReadAll()
			printRegs(cmd.OutOrStdout(), resp.Regs)
			return err
		},
	}
	cmd.Flags().StringVar(&regName, RegOptionName, "", "Register name or address, e.g. SETTINGS1 or 0x0018")
	cmd.Flags().BoolVar(&cached, CachedOptionName, false, "Print the values last read by the server without bus access")

	return cmd
}
