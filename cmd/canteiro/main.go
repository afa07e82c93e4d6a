package main

import "github.com/canteiro/canteiro/pkg/cli"

func main() {
	cli.Execute()
}
