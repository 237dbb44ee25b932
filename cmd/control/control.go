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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-as5047p/cmd/control/reg"
)

const (
	AddressOptionName = "address"
	PortOptionName    = "port"
	DAECOptionName    = "daec"
	DBPathOptionName  = "db-path"
)

// NewCommand groups the control server and the commands talking to it
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "control",
		Short: "Control server and its clients",
	}
	cmd.AddCommand(NewStartCommand())
	cmd.AddCommand(NewAngleCommand())
	cmd.AddCommand(NewMagnitudeCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewBackupCommand())
	cmd.AddCommand(NewRestoreCommand())
	cmd.AddCommand(reg.NewCommand())
	return cmd
}

func printJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
