// Package prompt formats resolved targets into chat slash-command prompts and agent instruction documents.
package prompt

import (
	"fmt"
	"strings"

	"github.com/temirov/doccomments/internal/target"
)

const (
	slashPrefix         = "/"
	paragraphBreak      = "\n\n"
	contextLinePrefix   = "// Context (do not edit): "
	minimumFenceLength  = 3
	fenceCharacter      = "`"
	agentPromptFormat   = "Read the instructions in %s and follow them exactly. Apply the edits to the file on disk."
	applyEditsStatement = "You must apply the edits directly to the file on disk. Do not only describe the change."
	fileLabel           = "File: "
	taskHeading         = "Task:"
	rulesHeading        = "Rules:"
	contextHeading      = "Context (do not edit):"
	snippetHeading      = "Snippet:"
	rulePrefix          = "- "
	taskLocateFormat    = "1. Open %s and locate the code snippet shown below."
	taskInsertStatement = "2. Insert a documentation comment block immediately above the snippet."
	taskSaveStatement   = "3. Save the file."
)

// ChatPrompt renders "/<command>" followed by a context line (when enabled and present) and the fenced target text.
func ChatPrompt(slashCommand string, resolved target.Target, contextEnabled bool) string {
	var builder strings.Builder
	builder.WriteString(slashPrefix)
	builder.WriteString(strings.TrimPrefix(strings.TrimSpace(slashCommand), slashPrefix))
	if contextEnabled && resolved.HasContext() {
		builder.WriteString(paragraphBreak)
		builder.WriteString(contextLinePrefix)
		builder.WriteString(resolved.Context)
	}
	text := strings.TrimSpace(resolved.Text)
	if text != "" {
		builder.WriteString(paragraphBreak)
		writeFenced(&builder, resolved.LanguageID, text)
	}
	return builder.String()
}

// AgentInstructions renders the instruction document an agent follows to document the target in filePath.
func AgentInstructions(filePath string, resolved target.Target, rules RuleSet) string {
	var builder strings.Builder
	builder.WriteString(applyEditsStatement)
	builder.WriteString(paragraphBreak)

	builder.WriteString(fileLabel)
	builder.WriteString(filePath)
	builder.WriteString(paragraphBreak)

	builder.WriteString(taskHeading)
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf(taskLocateFormat, filePath))
	builder.WriteString("\n")
	builder.WriteString(taskInsertStatement)
	builder.WriteString("\n")
	builder.WriteString(taskSaveStatement)
	builder.WriteString(paragraphBreak)

	builder.WriteString(rulesHeading)
	builder.WriteString("\n")
	for _, rule := range rules.Rules {
		builder.WriteString(rulePrefix)
		builder.WriteString(rule)
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	if resolved.HasContext() {
		builder.WriteString(contextHeading)
		builder.WriteString("\n")
		builder.WriteString(resolved.Context)
		builder.WriteString(paragraphBreak)
	}

	builder.WriteString(snippetHeading)
	builder.WriteString("\n")
	writeFenced(&builder, resolved.LanguageID, strings.TrimSpace(resolved.Text))
	builder.WriteString("\n")
	return builder.String()
}

// AgentPrompt is the short command-line prompt pointing the agent at its instruction file.
func AgentPrompt(instructionPath string) string {
	return fmt.Sprintf(agentPromptFormat, instructionPath)
}

func writeFenced(builder *strings.Builder, languageID string, text string) {
	fence := fenceFor(text)
	builder.WriteString(fence)
	builder.WriteString(languageID)
	builder.WriteString("\n")
	builder.WriteString(text)
	builder.WriteString("\n")
	builder.WriteString(fence)
}

// fenceFor returns a backtick fence longer than any backtick run inside text.
func fenceFor(text string) string {
	longestRun := 0
	currentRun := 0
	for _, character := range text {
		if string(character) == fenceCharacter {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}
	length := minimumFenceLength
	if longestRun >= length {
		length = longestRun + 1
	}
	return strings.Repeat(fenceCharacter, length)
}
