package outputproviders

import (
	"fmt"

	"github.com/praetorian-inc/violet/pkg/types"
)

type ConsoleProvider struct {
	types.OutputProvider
}

func NewConsoleProvider(outputPath string) types.OutputProvider {
	return &ConsoleProvider{}
}

// Write writes the `data` field of the result to the console.
func (cp *ConsoleProvider) Write(result types.Result) error {
	fmt.Println(result.String())
	return nil
}
