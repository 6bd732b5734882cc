package main

import (
	"github.com/dyike/DepotGo/internal/cli"
)

func main() {
	cli.Run()
}
