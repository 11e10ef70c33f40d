package action

import "strings"

// TitleRequiredMessage is the error for a blank title.
const TitleRequiredMessage = "Title required"

// DemoTitleErrorMessage is the error for titles containing "error".
const DemoTitleErrorMessage = `Todos cannot include the word "error"`

// ValidateTitle returns a message if title is blank.
func ValidateTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return TitleRequiredMessage
	}
	return ""
}

// DemoTitleError rejects any title containing "error", so the failure
// paths can be exercised by hand.
func DemoTitleError(title string) string {
	if strings.Contains(title, "error") {
		return DemoTitleErrorMessage
	}
	return ""
}

func checkTitle(kind Kind, id, title string) error {
	if message := DemoTitleError(title); message != "" {
		return titleFormError(kind, id, title, message)
	}
	if message := ValidateTitle(title); message != "" {
		return titleFormError(kind, id, title, message)
	}
	return nil
}
