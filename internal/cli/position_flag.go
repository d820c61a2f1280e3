package cli

import (
	"github.com/spf13/pflag"

	"github.com/temirov/doccomments/internal/editor"
	"github.com/temirov/doccomments/internal/symbols"
)

const (
	positionFlagTypeName = "line:column"
	spanFlagTypeName     = "line:column-line:column"
)

type positionFlagValue struct {
	target *symbols.Position
}

func (value *positionFlagValue) Set(input string) error {
	position, parseError := editor.ParsePosition(input)
	if parseError != nil {
		return parseError
	}
	*value.target = position
	return nil
}

func (value *positionFlagValue) String() string {
	if value == nil || value.target == nil {
		return editor.FormatPosition(symbols.Position{})
	}
	return editor.FormatPosition(*value.target)
}

func (value *positionFlagValue) Type() string {
	return positionFlagTypeName
}

type spanFlagValue struct {
	target *symbols.Span
	set    bool
}

func (value *spanFlagValue) Set(input string) error {
	span, parseError := editor.ParseSpan(input)
	if parseError != nil {
		return parseError
	}
	*value.target = span
	value.set = true
	return nil
}

func (value *spanFlagValue) String() string {
	if value == nil || value.target == nil || !value.set {
		return ""
	}
	return editor.FormatPosition(value.target.Start) + "-" + editor.FormatPosition(value.target.End)
}

func (value *spanFlagValue) Type() string {
	return spanFlagTypeName
}

func registerPositionFlag(flagSet *pflag.FlagSet, target *symbols.Position, name string, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	flagSet.Var(&positionFlagValue{target: target}, name, usage)
}

func registerSpanFlag(flagSet *pflag.FlagSet, target *symbols.Span, name string, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	flagSet.Var(&spanFlagValue{target: target}, name, usage)
}
