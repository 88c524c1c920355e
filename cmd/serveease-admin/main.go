package main

import "github.com/serveease/admin/internal/cli"

func main() {
	cli.Execute()
}
