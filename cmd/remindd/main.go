package main

import (
	"fmt"
	"os"

	"github.com/sandeepkv93/remindd/cmd/remindd/app"
)

var version = "dev"

func main() {
	if err := app.Execute(os.Args, version); err != nil {
		fmt.Fprintf(os.Stderr, "remindd: %s\n", err.Error())
		os.Exit(1)
	}
}
