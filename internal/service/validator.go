package service

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidTarget marks URLs the strict variant refuses to save
var ErrInvalidTarget = errors.New("not a valid target")

// TargetValidator decides whether a URL may be bookmarked
type TargetValidator interface {
	Validate(url string) error
}

// PatternValidator accepts URLs matching a regular expression
type PatternValidator struct {
	re *regexp.Regexp
}

// NewPatternValidator compiles pattern
func NewPatternValidator(pattern string) (*PatternValidator, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile target pattern: %w", err)
	}
	return &PatternValidator{re: re}, nil
}

// Validate returns an error wrapping ErrInvalidTarget when url is empty or doesn't match
func (v *PatternValidator) Validate(url string) error {
	err := validation.Validate(url,
		validation.Required,
		validation.Match(v.re).Error("does not match the required link format"),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	return nil
}

// AcceptAll lets every URL through; used when strict mode is off
type AcceptAll struct{}

func (AcceptAll) Validate(string) error { return nil }
