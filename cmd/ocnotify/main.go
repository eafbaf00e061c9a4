// Package main provides the CLI entrypoint for ocnotify.
package main

func main() {
	Execute()
}
