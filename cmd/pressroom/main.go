// Package main is the entry point for the Pressroom API.
// Subcommands serve the API, apply migrations and seed sample data.
package main

import "pressroom/internal/cli"

func main() {
	cli.Execute()
}
