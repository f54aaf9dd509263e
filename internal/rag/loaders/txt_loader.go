package loaders

import (
	"context"
	"os"
)

// TxtLoader implements the Loader interface for plain text files.
type TxtLoader struct{}

// NewTxtLoader creates a new TxtLoader.
func NewTxtLoader() *TxtLoader {
	return &TxtLoader{}
}

// Load reads the whole file as UTF-8 text.
func (l *TxtLoader) Load(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// compile-time check to ensure TxtLoader implements the Loader interface
var _ Loader = (*TxtLoader)(nil)
