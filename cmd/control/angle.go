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
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-as5047p/pkg/command"
	"jinr.ru/greenlab/go-as5047p/pkg/config"
)

func NewAngleCommand() *cobra.Command {
	var daec bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "angle",
		Short: "Read the angle through the control server",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			resp, err := apiClient.Angle(daec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d (%.4f deg)\n", resp.Raw, resp.Degree)
			return nil
		},
	}
	cmd.Flags().BoolVar(&daec, DAECOptionName, true, "Read the dynamic angle error compensated angle")

	return cmd
}

func NewMagnitudeCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "magnitude",
		Short: "Read the CORDIC magnitude through the control server",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			resp, err := apiClient.Magnitude()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", resp.Magnitude)
			return nil
		},
	}

	return cmd
}

func NewStatusCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Dump every register through the control server",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			resp, err := apiClient.Status()
			fmt.Fprint(cmd.OutOrStdout(), resp.Text)
			return err
		},
	}

	return cmd
}
