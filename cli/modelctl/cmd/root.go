/*
Copyright The Volcano Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var serverAddr string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "modelctl",
	Short: "CLI for managing models loaded in a modelserverd instance",
	Long: `modelctl talks to a running modelserverd's repository API to load,
unload, and list models.

Examples:
  modelctl load iris --implementation echo --version 1
  modelctl unload iris --version 1
  modelctl list iris`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(), and only needs to
// happen once for rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8080", "modelserverd base URL")
}
