package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/doccomments/internal/config"
)

const (
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write the default configuration to .doccomments.yaml in the working directory,
or to ~/.doccomments/config.yaml with --global.`
	globalFlagName        = "global"
	globalFlagDescription = "write the global configuration under the home directory"
	forceFlagName         = "force"
	forceFlagDescription  = "overwrite an existing configuration file"
	initWrittenFormat     = "configuration written to %s\n"
)

// createInitCommand returns the init subcommand.
func createInitCommand(env environment) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := env.workingDir()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
			}
			options := config.InitOptions{Target: config.InitTargetLocal, Force: force, WorkingDirectory: workingDirectory}
			if global {
				options.Target = config.InitTargetGlobal
			}
			path, initError := config.InitializeConfiguration(options)
			if initError != nil {
				return initError
			}
			fmt.Fprintf(command.OutOrStdout(), initWrittenFormat, path)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
