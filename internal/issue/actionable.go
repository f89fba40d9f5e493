// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ActionableError is a user-facing error: what modkit was doing, on which
// file, why it failed and what to try next.
//
//	err := issue.NewErrorContext().
//		WithOperation("read .ovlpaths").
//		WithResource("Mod_ProTrack/.ovlpaths").
//		WithSuggestion("Create the file next to Manifest.xml").
//		Wrap(originalErr).
//		BuildError()
type ActionableError struct {
	Operation   string
	Resource    string
	Suggestions []string
	// Issue links a catalog entry; zero means none.
	Issue Id
	Cause error
}

// Error returns "failed to <operation>: <resource>: <cause>".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error { return e.Cause }

// Format returns the message followed by one bullet per suggestion. Verbose
// output also numbers every error in the cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteByte('\n')
		for _, s := range e.Suggestions {
			fmt.Fprintf(&b, "\n  • %s", s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", depth, err)
		}
	}

	return b.String()
}

// ErrorContext accumulates the fields of an ActionableError.
type ErrorContext struct {
	ae ActionableError
}

func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.ae.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.ae.Resource = res
	return c
}

// WithSuggestion appends a hint. Suggestions keep their call order.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.ae.Suggestions = append(c.ae.Suggestions, sug)
	return c
}

func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.ae.Issue = id
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.ae.Cause = err
	return c
}

// Build returns a copy of the accumulated error, or nil when no operation
// was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.ae.Operation == "" {
		return nil
	}
	ae := c.ae
	ae.Suggestions = slices.Clone(c.ae.Suggestions)
	return &ae
}

// BuildError is Build as an error value; it is a nil interface, not a typed
// nil, when no operation was set.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}

// Format renders err for display, using ActionableError.Format when err
// carries one.
func Format(err error, verbose bool) string {
	if ae, ok := asActionable(err); ok {
		return ae.Format(verbose)
	}
	return err.Error()
}

// IssueOf returns the catalog entry linked from err, if any.
func IssueOf(err error) (*Issue, bool) {
	ae, ok := asActionable(err)
	if !ok || ae.Issue == 0 {
		return nil, false
	}
	iss := Get(ae.Issue)
	return iss, iss != nil
}

func asActionable(err error) (*ActionableError, bool) {
	var ae *ActionableError
	ok := errors.As(err, &ae)
	return ae, ok
}
