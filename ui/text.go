// Package ui is the terminal presentation layer: colors, spinner and
// prompts. Log output goes to the logfile, user output goes through here.
package ui

import (
	"os"

	"github.com/logrusorgru/aurora"
)

func Color() aurora.Aurora {
	return aurora.NewAurora(SupportsANSICodes())
}

func Bold(text string) string {
	color := Color()
	return color.Sprintf(color.Bold(text))
}

func GreenText(text string) string {
	color := Color()
	return color.Sprintf(color.Green(text))
}

func RedText(text string) string {
	color := Color()
	return color.Sprintf(color.Red(text))
}

func YellowText(text string) string {
	color := Color()
	return color.Sprintf(color.Yellow(text))
}

func BlueText(text string) string {
	color := Color()
	return color.Sprintf(color.Blue(text))
}

// Error prints an error message to stderr in red.
func Error(message string) {
	os.Stderr.WriteString(RedText(message) + "\n")
}
