// Package main is the entry point for the demotrak CLI tool, which turns
// decoded match telemetry into per-match player stats and career trends.
package main

import "github.com/stattrak/demotrak/cmd"

func main() {
	cmd.Execute()
}
