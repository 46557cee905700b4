package outputproviders

import (
	"os"
	"path/filepath"

	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/pkg/types"
)

type PlainFileProvider struct {
	types.OutputProvider
	OutputPath string
}

func NewPlainFileProvider(outputPath string) types.OutputProvider {
	return &PlainFileProvider{OutputPath: outputPath}
}

func (fp *PlainFileProvider) Write(result types.Result) error {
	filename := result.Filename
	if filename == "" {
		filename = DefaultFileName(result.Module, "txt")
	}
	fullpath := GetFullPath(filename, fp.OutputPath)
	dir := filepath.Dir(fullpath)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}

	file, err := os.OpenFile(fullpath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(result.String() + "\n"); err != nil {
		return err
	}

	message.Success("Output written to %s", fullpath)

	return nil
}
