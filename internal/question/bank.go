package question

import (
	"fmt"

	"github.com/fragmentforge/escape-api/internal/game"
)

// ValidateBank checks every entry of a question bank. The bank's array
// position is the global door index, so order matters and entries must be
// self-consistent: at least two options and a correct index that points at
// one of them.
func ValidateBank(bank []game.Question) error {
	for i, q := range bank {
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: need at least 2 options, got %d", i, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("question %d: correctIndex %d out of range for %d options", i, q.CorrectIndex, len(q.Options))
		}
		if q.Prompt == "" {
			return fmt.Errorf("question %d: empty prompt", i)
		}
	}
	return nil
}
