package main

import (
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/cli/cmd"
)

func main() {
	cmd.Execute()
}
