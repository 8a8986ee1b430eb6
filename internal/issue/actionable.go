// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

type (
	// ActionableError is a fatal error as shown to the user: the step that
	// failed, the file involved, hints and the guide `rsbundle explain` can
	// show for it.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("bundle").
	//		WithSuggestion("Pass --lenient to bundle the modules that can be found").
	//		WithGuide(issue.MissingDependencyId).
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		// Operation is the failed step, e.g. "bundle" or "load configuration".
		Operation string
		// Resource is the file involved, if any.
		Resource string
		// Suggestions are printed as bullets in verbose output.
		Suggestions []string
		// Guide is the troubleshooting guide for the failure. Zero means none.
		Guide Id
		Cause error
	}

	// ErrorContext builds an ActionableError. A context can be reused for
	// several causes.
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		guide       Id
		cause       error
	}
)

// NewErrorContext returns an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error returns `failed to <operation>[: <resource>][: <cause>]`.
func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Hints returns the suggestions followed by the `rsbundle explain` command
// for the guide, if one is set and known.
func (e *ActionableError) Hints() []string {
	hints := slices.Clone(e.Suggestions)
	if guide := Get(e.Guide); guide != nil {
		hints = append(hints, "Run 'rsbundle explain "+guide.Slug()+"'")
	}
	return hints
}

// Format renders the error with its hints as bullets:
//
//	failed to <operation>: <resource>: <cause>
//
//	  • <hint>
//
// With verbose the cause chain is appended, one numbered line per error.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	if hints := e.Hints(); len(hints) > 0 {
		msg.WriteString("\n")
		for _, h := range hints {
			msg.WriteString("\n  • ")
			msg.WriteString(h)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		for depth, err := range chain(e.Cause) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth+1, err.Error())
		}
	}
	return msg.String()
}

// chain follows err's causes. For errors that unwrap to several errors, the
// last one is taken as the cause; the others are sentinels.
func chain(err error) []error {
	var out []error
	for err != nil {
		out = append(out, err)
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			errs := u.Unwrap()
			if len(errs) == 0 {
				return out
			}
			err = errs[len(errs)-1]
		default:
			err = errors.Unwrap(err)
		}
	}
	return out
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends a hint. It may be called repeatedly.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// WithGuide links the troubleshooting guide for the failure.
func (c *ErrorContext) WithGuide(id Id) *ErrorContext {
	c.guide = id
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build returns nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: slices.Clone(c.suggestions),
		Guide:       c.guide,
		Cause:       c.cause,
	}
}

// BuildError is Build returning a plain error, nil when no operation was set.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
