package main

import (
	"context"

	"alamos-extract/cmd/alamos-extract/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
