package errors

import "fmt"

// InvalidPrompt rejects a user prompt before any provider call.
func InvalidPrompt(message string) error {
	return &AppError{Code: CodeInvalidPrompt, Message: message}
}

// ProviderUnavailable reports that the LLM provider kept failing. The message
// carries the last underlying provider error.
func ProviderUnavailable(err error) error {
	message := "error while communicating with the llm provider"
	if err != nil {
		message = message + ": " + err.Error()
	}
	return &AppError{Code: CodeProviderUnavailable, Message: message, Err: err}
}

// Processing normalizes any other generation failure.
func Processing(err error) error {
	message := "error while processing the prompt"
	if err != nil {
		message = message + ": " + err.Error()
	}
	return &AppError{Code: CodeProcessing, Message: message, Err: err}
}

// AdventureNotFound reports an unknown adventure identifier.
func AdventureNotFound(id int64) error {
	return &AppError{Code: CodeAdventureNotFound, Message: fmt.Sprintf("adventure with id %d not found", id)}
}
