package main

import (
	"github.com/praetorian-inc/violet/cmd"
)

func main() {
	cmd.Execute()
}
