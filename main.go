// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/ed2kdoc/sitegen/cmd/sitegen"

func main() {
	cmd.Execute()
}
