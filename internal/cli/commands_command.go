package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const (
	commandsUse              = "commands"
	commandsShortDescription = "list the registered documentation commands"
	commandsHeader           = "ID\tKIND\tTITLE"
	commandsRowFormat        = "%s\t%s\t%s\n"
)

// createCommandsCommand returns the subcommand listing the registry.
func createCommandsCommand(env environment, root *rootOptions) *cobra.Command {
	var printJSON bool

	commandsCommand := &cobra.Command{
		Use:   commandsUse,
		Short: commandsShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration, configurationError := loadConfiguration(env, root)
			if configurationError != nil {
				return configurationError
			}
			activated, activationError := activate(env, configuration)
			if activationError != nil {
				return activationError
			}
			defer activated.Close()

			registered := activated.registry.Commands()
			if printJSON {
				encoder := json.NewEncoder(command.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(registered)
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, commandsHeader)
			for _, registeredCommand := range registered {
				fmt.Fprintf(writer, commandsRowFormat, registeredCommand.ID, registeredCommand.Kind, registeredCommand.Title)
			}
			return writer.Flush()
		},
	}
	registerBooleanFlag(commandsCommand.Flags(), &printJSON, jsonFlagName, false, jsonFlagDescription)
	return commandsCommand
}
