// Package banner prints the startup banner shared by the callcore
// binaries.
package banner

import (
	"fmt"
	"strings"
)

const logo = `
======================================================================
  ____      _ _
 / ___|__ _| | | ___ ___  _ __ ___
| |   / _` + "`" + ` | | |/ __/ _ \| '__/ _ \
| |__| (_| | | | (_| (_) | | |  __/
 \____\__,_|_|_|\___\___/|_|  \___|
----------------------------------------------------------------------`

const footer = `======================================================================`

// ConfigLine is a single configuration line to display.
type ConfigLine struct {
	Label string
	Value string
}

// Print displays the startup banner with the service name and its
// configuration.
func Print(serviceName string, config []ConfigLine) {
	fmt.Println(logo)
	fmt.Printf("%s\n", serviceName)

	maxLen := 0
	for _, c := range config {
		if len(c.Label) > maxLen {
			maxLen = len(c.Label)
		}
	}

	for _, c := range config {
		padding := strings.Repeat(" ", maxLen-len(c.Label))
		fmt.Printf("  %s%s : %s\n", c.Label, padding, c.Value)
	}

	fmt.Println()
	fmt.Println("Ready.")
	fmt.Println(footer)
	fmt.Println()
}
