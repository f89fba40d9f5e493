// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/protrack/modkit/cmd/modkit"

func main() {
	cmd.Execute()
}
