package outputproviders

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/pkg/types"
)

type JsonFileProvider struct {
	types.OutputProvider
	OutputPath string
}

func NewJsonFileProvider(outputPath string) types.OutputProvider {
	return &JsonFileProvider{OutputPath: outputPath}
}

func (fp *JsonFileProvider) Write(result types.Result) error {
	filename := result.Filename
	if filename == "" {
		filename = DefaultFileName(result.Module, "json")
	}
	fullpath := GetFullPath(filename, fp.OutputPath)
	dir := filepath.Dir(fullpath)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}

	file, err := os.Create(fullpath)
	if err != nil {
		return err
	}
	defer file.Close()
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result.Data); err != nil {
		return err
	}

	message.Success("Output written to %s", fullpath)

	return nil
}
