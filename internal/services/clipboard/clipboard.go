// Package clipboard writes prompts to the system clipboard.
package clipboard

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
)

// Writer places text on the clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// Service implements Writer using github.com/atotto/clipboard.
type Service struct {
	write func(string) error
}

// NewService constructs a clipboard Service backed by the system clipboard.
func NewService() *Service {
	return &Service{write: clipboard.WriteAll}
}

// WriteText writes text to the system clipboard unless ctx is already done.
func (service *Service) WriteText(ctx context.Context, text string) error {
	if contextError := ctx.Err(); contextError != nil {
		return contextError
	}
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if writeError := service.write(text); writeError != nil {
		return fmt.Errorf("write clipboard: %w", writeError)
	}
	return nil
}

var _ Writer = (*Service)(nil)
