// Package main is the entry point for the stack advisor.
package main

import "stack-advisor/cmd/advisor/cmd"

func main() {
	cmd.Execute()
}
