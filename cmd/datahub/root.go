// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/spf13/cobra"

	"github.com/medimate/datahub"
)

var logger = loggo.GetLogger("datahub.cmd")

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "datahub",
		Short:         "Data change hub playground",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"YAML config file (default: built in defaults)")
	cmd.AddCommand(newSimulateCommand(opts))
	return cmd
}

// loadConfig reads the config file if one was given and applies its
// logging settings.
func (o *rootOptions) loadConfig() (datahub.Config, error) {
	config := datahub.DefaultConfig()
	if o.configPath != "" {
		var err error
		if config, err = datahub.ReadConfig(o.configPath); err != nil {
			return datahub.Config{}, errors.Trace(err)
		}
	}
	if err := config.ConfigureLogging(); err != nil {
		return datahub.Config{}, errors.Trace(err)
	}
	return config, nil
}
