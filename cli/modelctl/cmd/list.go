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
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list NAME",
	Short: "Show a model's default version and whether it is ready",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	name := args[0]
	data, err := getJSON(fmt.Sprintf("/v2/models/%s", name))
	if err != nil {
		return err
	}

	var md map[string]any
	if err := json.Unmarshal(data, &md); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	_, readyErr := getJSON(fmt.Sprintf("/v2/models/%s/ready", name))
	ready := readyErr == nil

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tREADY")
	version, _ := md["version"].(string)
	fmt.Fprintf(w, "%s\t%s\t%v\n", name, version, ready)
	return w.Flush()
}
