package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestRegisterBooleanFlagParsesValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		defaultValue bool
		arguments    []string
		expected     bool
	}{
		{name: "keeps_default", defaultValue: true, arguments: []string{}, expected: true},
		{name: "bare_flag_sets_true", defaultValue: false, arguments: []string{"--json"}, expected: true},
		{name: "equals_false", defaultValue: true, arguments: []string{"--json=false"}, expected: false},
		{name: "separate_off_literal", defaultValue: true, arguments: []string{"--json", "off"}, expected: false},
		{name: "non_literal_stays_positional", defaultValue: false, arguments: []string{"--json", "src/app.ts"}, expected: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "boolean-test"}
			var flagValue bool
			registerBooleanFlag(command.Flags(), &flagValue, "json", testCase.defaultValue, "print json")
			if parseErr := command.ParseFlags(normalizeBooleanFlagArguments(command, testCase.arguments)); parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if flagValue != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, flagValue)
			}
		})
	}
}

func TestRegisterOptionalBooleanFlag(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		arguments   []string
		expectSet   bool
		expected    bool
		expectError bool
	}{
		{name: "unset_without_flag", arguments: []string{}},
		{name: "bare_flag", arguments: []string{"--skip-git-repo-check"}, expectSet: true, expected: true},
		{name: "explicit_no", arguments: []string{"--skip-git-repo-check", "no"}, expectSet: true, expected: false},
		{name: "invalid_literal", arguments: []string{"--skip-git-repo-check=maybe"}, expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "optional-test"}
			var flagValue *bool
			registerOptionalBooleanFlag(command.Flags(), &flagValue, "skip-git-repo-check", "bypass the repository check")
			parseErr := command.ParseFlags(normalizeBooleanFlagArguments(command, testCase.arguments))
			if testCase.expectError {
				if parseErr == nil {
					t.Fatalf("expected parse error for %v", testCase.arguments)
				}
				return
			}
			if parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if (flagValue != nil) != testCase.expectSet {
				t.Fatalf("expected set=%t, got %v", testCase.expectSet, flagValue)
			}
			if flagValue != nil && *flagValue != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, *flagValue)
			}
		})
	}
}

func TestPositionAndSpanFlags(t *testing.T) {
	t.Parallel()
	command := &cobra.Command{Use: "position-test"}
	var options documentCommandOptions
	registerPositionFlag(command.Flags(), &options.cursor, cursorFlagName, cursorFlagDescription)
	registerSpanFlag(command.Flags(), &options.selection, selectionFlagName, selectionFlagDescription)
	if parseErr := command.ParseFlags([]string{"--cursor", "12:4", "--selection", "9:0-3:2"}); parseErr != nil {
		t.Fatalf("unexpected parse error: %v", parseErr)
	}
	if options.cursor.Line != 12 || options.cursor.Column != 4 {
		t.Fatalf("unexpected cursor %+v", options.cursor)
	}
	if options.selection.Start.Line != 3 || options.selection.End.Line != 9 {
		t.Fatalf("selection endpoints must be ordered: %+v", options.selection)
	}
	if rendered := command.Flags().Lookup(selectionFlagName).Value.String(); rendered != "3:2-9:0" {
		t.Fatalf("unexpected rendered selection %q", rendered)
	}
	if parseErr := command.ParseFlags([]string{"--cursor", "x"}); parseErr == nil {
		t.Fatalf("expected error for malformed cursor")
	}
}
