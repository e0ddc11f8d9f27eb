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
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofea/observability"
	"github.com/notargets/gofea/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gofea",
	Short: "Finite element static and modal analysis of bar structures",
	Long: `
Numbers the degrees of freedom of a bar structure described in a YAML model
file, assembles its stiffness, mass and loads, and solves either the linear
static problem or the free vibration eigenproblem.

gofea static -I model.yaml
gofea modal -I model.yaml -n 5`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gofea.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().Bool("trace", false, "print the spans of the analysis stages to stderr")
	rootCmd.PersistentFlags().String("metrics-file", "", "write Prometheus metrics to this file after the run")
	rootCmd.PersistentFlags().String("profile", "", "profile the run: cpu or mem")
	for _, name := range []string{"log-level", "log-format", "trace", "metrics-file", "profile"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".gofea" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".gofea")
	}

	viper.SetEnvPrefix("GOFEA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}

func configureLogging(cmd *cobra.Command) error {
	level, err := log.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(cmd.ErrOrStderr())
	switch format := viper.GetString("log-format"); format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// runAnalysis sets up logging, profiling, tracing and metrics around body.
func runAnalysis(cmd *cobra.Command, body func(ctx context.Context) error) (err error) {
	if err = configureLogging(cmd); err != nil {
		return
	}
	switch mode := viper.GetString("profile"); mode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", mode)
	}

	ctx := context.Background()
	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled: viper.GetBool("trace"),
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown)

	if path := viper.GetString("metrics-file"); path != "" {
		var c *observability.Collector
		if c, err = observability.NewCollector(prometheus.NewRegistry()); err != nil {
			return
		}
		observability.Use(c)
		defer func() {
			observability.Use(nil)
			if werr := c.WriteTextfile(path); werr != nil && err == nil {
				err = werr
			}
		}()
	}
	log.WithField("netlib", utils.NetlibBLAS).Debug("linear algebra backend")
	defer func() {
		log.WithField("mem", utils.GetMemUsage()).Debug("analysis finished")
	}()
	return body(ctx)
}
