// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/adrytools/rsbundle/cmd/rsbundle"

func main() {
	cmd.Execute()
}
