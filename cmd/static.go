/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

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
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/notargets/gofea/analysis"
	"github.com/notargets/gofea/types"
)

// StaticCmd represents the static command
var StaticCmd = &cobra.Command{
	Use:   "static",
	Short: "Linear static analysis: displacements, axial forces and elastic work",
	Long: `
Solves K U = F for the displacements of the structure under its prescribed
displacements, tractions and temperature change.

gofea static -I model.yaml [-o results.yaml]`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("inputFile")
		output, _ := cmd.Flags().GetString("output")
		return runAnalysis(cmd, func(ctx context.Context) error {
			mp, err := readModel(input, types.Analysis_Static)
			if err != nil {
				return err
			}
			m, err := mp.NewModel(filepath.Dir(input))
			if err != nil {
				return err
			}
			out, err := analysis.RunStatic(ctx, m.Record)
			if err != nil {
				return err
			}
			res, err := newStaticResults(mp, m, out)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), output, res)
		})
	},
}

func init() {
	rootCmd.AddCommand(StaticCmd)
	StaticCmd.Flags().StringP("inputFile", "I", "", "YAML model file")
	StaticCmd.Flags().StringP("output", "o", "", "write the results as YAML to this file instead of stdout")
}
