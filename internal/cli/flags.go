package cli

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
)

// choiceValue is a string flag restricted to a fixed set of values
type choiceValue struct {
	value   string
	choices []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoice(def string, choices ...string) *choiceValue {
	return &choiceValue{value: def, choices: choices}
}

func (c *choiceValue) String() string {
	return c.value
}

func (c *choiceValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, choice := range c.choices {
		if s == choice {
			c.value = s
			return nil
		}
	}
	return errors.Newf("must be one of %s", strings.Join(c.choices, ", "))
}

func (c *choiceValue) Type() string {
	return strings.Join(c.choices, "|")
}

// usageError marks errors caused by the command line rather than the download
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

func isUsageError(err error) bool {
	var ue *usageError
	return errors.As(err, &ue)
}
