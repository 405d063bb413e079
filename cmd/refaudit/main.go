package main

import "github.com/arthrod/refaudit/internal/cli"

func main() {
	cli.Execute()
}
