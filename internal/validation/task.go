package validation

import (
	"errors"
	"strings"
)

// NormalizeText убирает пробелы по краям текста задачи
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// ValidateTaskText текст задачи или подзадачи не может быть пустым
func ValidateTaskText(text string) error {
	if NormalizeText(text) == "" {
		return errors.New("task text is required")
	}
	return nil
}
