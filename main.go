package main

import (
	"github.com/adlabtools/kwopt/cmd"
)

func main() {
	cmd.Execute()
}
