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
	"fmt"

	"github.com/spf13/cobra"
)

var unloadVersion string

// unloadCmd represents the unload command.
var unloadCmd = &cobra.Command{
	Use:   "unload NAME",
	Short: "Unload a model, or one version of it",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnload,
}

func init() {
	rootCmd.AddCommand(unloadCmd)
	unloadCmd.Flags().StringVar(&unloadVersion, "version", "", "Version to unload (omit to unload every version)")
}

func runUnload(cmd *cobra.Command, args []string) error {
	path := fmt.Sprintf("/v2/repository/models/%s/unload", args[0])
	if unloadVersion != "" {
		path += "?version=" + unloadVersion
	}
	if _, err := postJSON(path, nil); err != nil {
		return err
	}
	fmt.Printf("unloaded %s\n", args[0])
	return nil
}
