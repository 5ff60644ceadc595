package main

import (
	"os"

	"github.com/osvaldoandrade/movectl/pkg/movectl"
)

func main() {
	os.Exit(movectl.Execute())
}
