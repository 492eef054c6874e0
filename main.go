package main

import "tlboot/internal/cli"

func main() {
	cli.Execute()
}
