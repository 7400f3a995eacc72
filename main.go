package main

import (
	"context"
	"os"

	"github.com/m-mizutani/quill/pkg/cli"
)

func main() {
	err := cli.Run(context.Background(), os.Args)
	os.Exit(cli.ExitCode(err))
}
