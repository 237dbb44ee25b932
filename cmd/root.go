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
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-as5047p/cmd/completion"
	"jinr.ru/greenlab/go-as5047p/cmd/config"
	"jinr.ru/greenlab/go-as5047p/cmd/control"
	"jinr.ru/greenlab/go-as5047p/cmd/sensor"
	pkgconfig "jinr.ru/greenlab/go-as5047p/pkg/config"
	"jinr.ru/greenlab/go-as5047p/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel string
	cfg := pkgconfig.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:          "go-as5047p",
		Short:        "Tool to work with AS5047P magnetic rotary sensors",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(config.NewCommand())
	cmd.AddCommand(control.NewCommand())
	cmd.AddCommand(sensor.NewCommand())
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	return cmd
}
