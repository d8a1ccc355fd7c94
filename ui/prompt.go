package ui

import (
	"fmt"

	"github.com/manifoldco/promptui"
)

// Confirm asks a yes/no question. Non-interactive sessions get the
// fallback answer without a prompt.
func Confirm(question string, fallback bool) bool {
	if !Interactive() {
		return fallback
	}
	prompt := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}

// PromptText asks for a free-form line of input.
func PromptText(text string) (string, error) {
	prompt := promptui.Prompt{
		Label: text,
	}
	return prompt.Run()
}

// PromptLanguage lets the user pick one of the available language codes.
func PromptLanguage(languages []string) (string, error) {
	prompt := promptui.Select{
		Label: "Select language",
		Items: languages,
		Templates: &promptui.SelectTemplates{
			Active:   `{{ . | underline }}`,
			Inactive: `{{ . }}`,
			Selected: fmt.Sprintf("%s Language: {{ . | bold }} ", GreenText("✔")),
		},
	}
	i, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return languages[i], nil
}
