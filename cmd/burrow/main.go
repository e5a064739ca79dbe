package main

import (
	"os"

	"github.com/burrowhq/burrow/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
