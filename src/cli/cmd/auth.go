package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sofmeright/docker-build/src/auth"
)

func newAuthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Write registry credentials from " + auth.EnvVar,
		Long: `Write the docker CLI credential file from ` + auth.EnvVar + `.

The payload is written to $DOCKER_CONFIG/config.json (default
~/.docker/config.json) with mode 0600. An unset or empty variable
writes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, _ := a.lookupEnv(auth.EnvVar)
			if payload == "" {
				a.log.Debugf("%s not set, nothing to write", auth.EnvVar)
				return nil
			}
			dir, err := auth.ConfigDir(a.lookupEnv)
			if err != nil {
				return err
			}
			path, err := auth.Write(payload, dir)
			if err != nil {
				return fmt.Errorf("%s: %w", auth.EnvVar, err)
			}
			fmt.Fprintf(a.stdout, "credentials written to %s\n", path)
			return nil
		},
	}
}
