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

// ModalCmd represents the modal command
var ModalCmd = &cobra.Command{
	Use:   "modal",
	Short: "Free vibration analysis: natural frequencies and mode shapes",
	Long: `
Solves (K + shift M) w = lambda M w for the eigenvalues of smallest magnitude
and reports the angular frequencies and mode shapes. Flags override the
values of the model file.

gofea modal -I model.yaml [-n 7] [--shift 0] [--lumped] [-o results.yaml]`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("inputFile")
		output, _ := cmd.Flags().GetString("output")
		return runAnalysis(cmd, func(ctx context.Context) error {
			mp, err := readModel(input, types.Analysis_Modal)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("neigvs") {
				mp.Neigvs, _ = cmd.Flags().GetInt("neigvs")
			}
			if cmd.Flags().Changed("shift") {
				mp.OmegaShift, _ = cmd.Flags().GetFloat64("shift")
			}
			if cmd.Flags().Changed("lumped") {
				mp.UseLumpedMass, _ = cmd.Flags().GetBool("lumped")
			}
			m, err := mp.NewModel(filepath.Dir(input))
			if err != nil {
				return err
			}
			out, err := analysis.RunModal(ctx, m.Record)
			if err != nil {
				return err
			}
			requested := mp.Neigvs
			if requested == 0 {
				requested = analysis.DefaultNEigvs
			}
			res, err := newModalResults(m, out, requested)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), output, res)
		})
	},
}

func init() {
	rootCmd.AddCommand(ModalCmd)
	ModalCmd.Flags().StringP("inputFile", "I", "", "YAML model file")
	ModalCmd.Flags().StringP("output", "o", "", "write the results as YAML to this file instead of stdout")
	ModalCmd.Flags().IntP("neigvs", "n", analysis.DefaultNEigvs, "number of eigenvalues of smallest magnitude")
	ModalCmd.Flags().Float64("shift", 0, "shift added as shift*M to K, for structures with rigid body modes")
	ModalCmd.Flags().Bool("lumped", false, "use HRZ lumped mass instead of consistent mass")
}
