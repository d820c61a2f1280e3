package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/doccomments/internal/dispatcher"
	"github.com/temirov/doccomments/internal/editor"
	"github.com/temirov/doccomments/internal/services/bridge"
	"github.com/temirov/doccomments/internal/symbols"
)

const (
	fileFlagName                 = "file"
	languageFlagName             = "language"
	cursorFlagName               = "cursor"
	selectionFlagName            = "selection"
	selectionTextFlagName        = "selection-text"
	stdinFlagName                = "stdin"
	workspaceFlagName            = "workspace"
	skipGitRepoCheckFlagName     = "skip-git-repo-check"
	jsonFlagName                 = "json"
	fileFlagDescription          = "document path; omit when no editor is active"
	languageFlagDescription      = "language identifier; detected from the file extension when empty"
	cursorFlagDescription        = "zero-based cursor position"
	selectionFlagDescription     = "zero-based selection range"
	selectionTextFlagDescription = "selected text; takes precedence over --selection"
	stdinFlagDescription         = "read the unsaved editor buffer from standard input"
	workspaceFlagDescription     = "workspace root; defaults to the repository containing the file"
	skipGitRepoCheckDescription  = "force the agent repository-check bypass on or off"
	jsonFlagDescription          = "print the outcome as JSON"
	errorReadBufferFormat        = "read editor buffer: %w"
	errorEncodeOutcomeFormat     = "encode outcome: %w"
	documentExampleFormat        = `  # Document the function around line 42
  doccomments %[1]s --file src/app.ts --cursor 41:8

  # Document a selection of an unsaved buffer
  doccomments %[1]s --file src/app.ts --selection 10:0-24:1 --stdin < buffer.txt`
)

// documentCommandOptions holds the editor context passed on the command line.
type documentCommandOptions struct {
	file             string
	languageID       string
	cursor           symbols.Position
	selection        symbols.Span
	selectionText    string
	readBuffer       bool
	workspace        string
	skipGitRepoCheck *bool
	printJSON        bool
}

// createDocumentCommand returns the subcommand running one registered documentation command.
func createDocumentCommand(env environment, root *rootOptions, registered dispatcher.Command) *cobra.Command {
	var options documentCommandOptions

	documentCommand := &cobra.Command{
		Use:     registered.ID,
		Short:   registered.Title,
		Example: fmt.Sprintf(documentExampleFormat, registered.ID),
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runDocumentCommand(command, env, root, registered.ID, options)
		},
	}

	flagSet := documentCommand.Flags()
	flagSet.StringVar(&options.file, fileFlagName, "", fileFlagDescription)
	flagSet.StringVar(&options.languageID, languageFlagName, "", languageFlagDescription)
	registerPositionFlag(flagSet, &options.cursor, cursorFlagName, cursorFlagDescription)
	registerSpanFlag(flagSet, &options.selection, selectionFlagName, selectionFlagDescription)
	flagSet.StringVar(&options.selectionText, selectionTextFlagName, "", selectionTextFlagDescription)
	registerBooleanFlag(flagSet, &options.readBuffer, stdinFlagName, false, stdinFlagDescription)
	flagSet.StringVar(&options.workspace, workspaceFlagName, "", workspaceFlagDescription)
	if registered.Kind == dispatcher.KindAgent {
		registerOptionalBooleanFlag(flagSet, &options.skipGitRepoCheck, skipGitRepoCheckFlagName, skipGitRepoCheckDescription)
	}
	registerBooleanFlag(flagSet, &options.printJSON, jsonFlagName, false, jsonFlagDescription)
	return documentCommand
}

func runDocumentCommand(command *cobra.Command, env environment, root *rootOptions, commandID string, options documentCommandOptions) error {
	configuration, configurationError := loadConfiguration(env, root)
	if configurationError != nil {
		return configurationError
	}
	if options.skipGitRepoCheck != nil {
		configuration.Agent.SkipGitRepoCheck = options.skipGitRepoCheck
	}

	request, requestError := options.request(command.InOrStdin())
	if requestError != nil {
		return requestError
	}

	activated, activationError := activate(env, configuration)
	if activationError != nil {
		return activationError
	}
	defer activated.Close()

	outcome, dispatchError := activated.dispatcher.Dispatch(command.Context(), commandID, request)
	if dispatchError != nil {
		return dispatchError
	}
	if options.printJSON {
		encoder := json.NewEncoder(command.OutOrStdout())
		encoder.SetIndent("", "  ")
		if encodeError := encoder.Encode(bridge.ResponseFromOutcome(outcome)); encodeError != nil {
			return fmt.Errorf(errorEncodeOutcomeFormat, encodeError)
		}
	}
	if outcome.State == dispatcher.StateFailed {
		return ErrCommandReported
	}
	return nil
}

// request builds the dispatcher request. An empty file means there is no active editor.
func (options documentCommandOptions) request(stdin io.Reader) (dispatcher.Request, error) {
	state := editor.State{
		Cursor:    options.cursor,
		Selection: editor.Selection{Text: options.selectionText, Span: options.selection},
	}
	if options.file == "" {
		return dispatcher.Request{Editor: state, Workspace: options.workspace}, nil
	}
	openOptions := editor.OpenOptions{Path: options.file, LanguageID: options.languageID}
	if options.readBuffer && stdin != nil {
		buffer, readError := io.ReadAll(stdin)
		if readError != nil {
			return dispatcher.Request{}, fmt.Errorf(errorReadBufferFormat, readError)
		}
		openOptions.Buffer = buffer
	}
	document, openError := editor.Open(openOptions)
	if openError != nil {
		return dispatcher.Request{}, openError
	}
	state.Document = document
	return dispatcher.Request{Editor: state, Workspace: options.workspace}, nil
}
