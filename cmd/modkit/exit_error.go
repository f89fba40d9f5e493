// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

// ExitError carries a process exit code from a RunE handler to Execute.
// The handler has already reported the failure when it returns one.
type ExitError struct {
	Code int
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
