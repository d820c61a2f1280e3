package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/temirov/doccomments/internal/utils"
)

const (
	instructionFilePrefix    = "instructions-"
	instructionFileExtension = ".md"
	instructionDirectoryMode = 0o755
	instructionFileMode      = 0o600
	instructionNameSeparator = "-"

	errorCreateDirectoryFormat = "create instruction directory %s: %w"
	errorWriteInstructions     = "write instruction file %s: %w"
	errorRemoveInstructions    = "remove instruction file %s: %w"
)

// InstructionFile is a transient instruction document under the workspace's hidden directory.
type InstructionFile struct {
	Path string
}

// WriteInstructionFile writes content to
// <workspace>/.doccomments/instructions-<timestamp>-<id>.md.
func WriteInstructionFile(workspace string, content string, now time.Time) (InstructionFile, error) {
	directory := filepath.Join(workspace, utils.WorkingDirectoryName)
	if mkdirError := os.MkdirAll(directory, instructionDirectoryMode); mkdirError != nil {
		return InstructionFile{}, fmt.Errorf(errorCreateDirectoryFormat, directory, mkdirError)
	}
	name := instructionFilePrefix + utils.FormatCompactTimestamp(now) + instructionNameSeparator + uuid.NewString() + instructionFileExtension
	path := filepath.Join(directory, name)
	if writeError := os.WriteFile(path, []byte(content), instructionFileMode); writeError != nil {
		return InstructionFile{}, fmt.Errorf(errorWriteInstructions, path, writeError)
	}
	return InstructionFile{Path: path}, nil
}

// Remove deletes the file and, when it is left empty, the hidden directory. A missing file is not an error.
func (instructionFile InstructionFile) Remove() error {
	if instructionFile.Path == "" {
		return nil
	}
	if removeError := os.Remove(instructionFile.Path); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
		return fmt.Errorf(errorRemoveInstructions, instructionFile.Path, removeError)
	}
	_ = os.Remove(filepath.Dir(instructionFile.Path))
	return nil
}
