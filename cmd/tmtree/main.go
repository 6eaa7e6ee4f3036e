package main

import "github.com/LeJamon/goTernaryMerkle/internal/cli"

func main() {
	cli.Execute()
}
