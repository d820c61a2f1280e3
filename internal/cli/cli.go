// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/doccomments/internal/config"
	"github.com/temirov/doccomments/internal/dispatcher"
	"github.com/temirov/doccomments/internal/utils"
)

const (
	configFlagName       = "config"
	versionFlagName      = "version"
	versionTemplate      = "doccomments version: %s\n"
	rootUse              = "doccomments"
	rootShortDescription = "Documentation comments through a chat panel or the Codex agent"
	rootLongDescription  = `doccomments documents the selection or the function under the cursor.
Chat commands prefill the chat panel with a slash command and fall back to the clipboard.
Agent commands have the Codex CLI insert the comments into the file directly.
Use serve to expose every command to an editor extension over HTTP.`
	versionFlagDescription      = "display application version"
	configFlagDescription       = "path to a configuration file replacing the local .doccomments.yaml"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
)

// ErrCommandReported is returned when a documentation command failed and its message was already shown.
var ErrCommandReported = errors.New("documentation command failed")

// environment is the process surface the commands work against.
type environment struct {
	logger     *zap.Logger
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	workingDir func() (string, error)
	// customize adjusts the dispatcher collaborators after they are wired.
	customize func(*dispatcher.Dependencies)
}

type rootOptions struct {
	configPath string
}

// Execute runs the doccomments application.
func Execute(ctx context.Context, logger *zap.Logger) error {
	rootCommand := createRootCommand(environment{
		logger:     logger,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		workingDir: os.Getwd,
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(env environment) *cobra.Command {
	if env.logger == nil {
		env.logger = zap.NewNop()
	}
	if env.workingDir == nil {
		env.workingDir = os.Getwd
	}
	var showVersion bool
	var options rootOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.SetIn(env.stdin)
	rootCommand.SetOut(env.stdout)
	rootCommand.SetErr(env.stderr)
	registerBooleanFlag(rootCommand.PersistentFlags(), &showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&options.configPath, configFlagName, "", configFlagDescription)

	for _, command := range dispatcher.DefaultCommands {
		rootCommand.AddCommand(createDocumentCommand(env, &options, command))
	}
	rootCommand.AddCommand(
		createServeCommand(env, &options),
		createCommandsCommand(env, &options),
		createInitCommand(env),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func loadConfiguration(env environment, options *rootOptions) (config.ApplicationConfiguration, error) {
	workingDirectory, workingDirectoryError := env.workingDir()
	if workingDirectoryError != nil {
		return config.ApplicationConfiguration{}, fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	return config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
	})
}
