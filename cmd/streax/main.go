package main

import "github.com/streax-app/streax/internal/cli"

func main() {
	cli.Execute()
}
