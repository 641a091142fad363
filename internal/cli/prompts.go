package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// PromptForQuestion asks the user for their next question. An empty answer or
// an explicit exit word ends the session.
func PromptForQuestion() (string, error) {
	var question string
	prompt := &survey.Input{
		Message: "What would you like to know about your portfolio?",
		Help:    "Ask about holdings, risk exposure, earnings surprises, prices or news. Press Enter on an empty line to exit.",
	}

	if err := survey.AskOne(prompt, &question); err != nil {
		return "", fmt.Errorf("read question: %w", err)
	}

	question = strings.TrimSpace(question)
	switch strings.ToLower(question) {
	case "exit", "quit", "q":
		return "", nil
	}
	return question, nil
}
