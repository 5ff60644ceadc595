package movectl

import "github.com/osvaldoandrade/movectl/internal/cli"

// Execute runs the movectl CLI entrypoint.
func Execute() int {
	return cli.Execute()
}
