package main

import "github.com/andrescamacho/cookbook-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
