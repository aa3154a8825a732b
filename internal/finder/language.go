package finder

import (
	"errors"
	"fmt"
	"strings"
)

// Language is a supported search language identifier.
type Language string

const (
	JavaScript Language = "javascript"
	Python     Language = "python"
	Ruby       Language = "ruby"
	Go         Language = "go"
	Java       Language = "java"
)

// DefaultLanguage is selected until the user picks another one.
const DefaultLanguage = JavaScript

// ErrUnsupportedLanguage is returned for identifiers outside Languages.
var ErrUnsupportedLanguage = errors.New("unsupported language")

var labels = map[Language]string{
	JavaScript: "JavaScript",
	Python:     "Python",
	Ruby:       "Ruby",
	Go:         "Go",
	Java:       "Java",
}

// Languages returns the selectable languages in display order.
func Languages() []Language {
	return []Language{JavaScript, Python, Ruby, Go, Java}
}

// Label returns the display name, e.g. "JavaScript".
func (l Language) Label() string {
	if s, ok := labels[l]; ok {
		return s
	}
	return string(l)
}

func (l Language) String() string { return string(l) }

// ParseLanguage maps an identifier (case-insensitive) to a Language.
func ParseLanguage(id string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(id)))
	if _, ok := labels[l]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, id)
	}
	return l, nil
}
