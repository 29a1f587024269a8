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

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
)

var (
	loadVersion        string
	loadURI            string
	loadImplementation string
	loadMaxBatchSize   int
)

// loadCmd represents the load command.
var loadCmd = &cobra.Command{
	Use:   "load NAME",
	Short: "Load a model by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVar(&loadVersion, "version", "", "Model version (omit for the unversioned default)")
	loadCmd.Flags().StringVar(&loadURI, "uri", "", "Model artifact URI")
	loadCmd.Flags().StringVar(&loadImplementation, "implementation", "", "Registered implementation name")
	loadCmd.Flags().IntVar(&loadMaxBatchSize, "max-batch-size", 0, "Maximum batch size")
}

func runLoad(cmd *cobra.Command, args []string) error {
	settings := loadRequest{
		Name: args[0],
		Parameters: model.Parameters{
			Version: loadVersion,
			URI:     loadURI,
		},
		MaxBatchSize:   loadMaxBatchSize,
		Implementation: loadImplementation,
	}

	if _, err := postJSON(fmt.Sprintf("/v2/repository/models/%s/load", args[0]), settings); err != nil {
		return err
	}
	fmt.Printf("loaded %s\n", args[0])
	return nil
}
