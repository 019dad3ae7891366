// SPDX-License-Identifier: MPL-2.0

package main

import cmd "amalgam-cli/cmd/amalgam"

func main() {
	cmd.Execute()
}
