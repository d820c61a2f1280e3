package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrRepositoryNotFound is returned when no .git directory exists at or above a directory.
var ErrRepositoryNotFound = errors.New(".git directory not found")

// FindRepositoryRoot searches upward from startDirectory until it locates a directory
// containing the .git folder and returns that directory.
func FindRepositoryRoot(startDirectory string) (string, error) {
	absoluteStartDirectory, errorAbsolute := filepath.Abs(startDirectory)
	if errorAbsolute != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", startDirectory, errorAbsolute)
	}

	currentDirectory := absoluteStartDirectory
	for {
		gitPath := filepath.Join(currentDirectory, GitDirectoryName)
		fileInformation, errorStat := os.Stat(gitPath)
		if errorStat == nil && fileInformation.IsDir() {
			return currentDirectory, nil
		}

		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}

	return "", fmt.Errorf("%w in or above %s", ErrRepositoryNotFound, absoluteStartDirectory)
}

// HasRepository reports whether directory is inside a Git working tree.
func HasRepository(directory string) bool {
	root, findError := FindRepositoryRoot(directory)
	return findError == nil && root != ""
}

// ResolveWorkspaceRoot picks the workspace for filePath: the explicit root when given,
// otherwise the enclosing repository root, otherwise the file's directory.
func ResolveWorkspaceRoot(filePath string, explicitRoot string) (string, error) {
	if explicitRoot != "" {
		absoluteRoot, absoluteError := filepath.Abs(explicitRoot)
		if absoluteError != nil {
			return "", fmt.Errorf("resolve workspace %s: %w", explicitRoot, absoluteError)
		}
		return absoluteRoot, nil
	}
	absoluteFile, absoluteError := filepath.Abs(filePath)
	if absoluteError != nil {
		return "", fmt.Errorf("resolve file %s: %w", filePath, absoluteError)
	}
	fileDirectory := filepath.Dir(absoluteFile)
	if repositoryRoot, findError := FindRepositoryRoot(fileDirectory); findError == nil {
		return repositoryRoot, nil
	}
	return fileDirectory, nil
}
