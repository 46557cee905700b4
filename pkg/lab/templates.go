// Package lab deploys and tears down disposable exercise ranges from
// embedded infrastructure templates on AWS and Azure.
package lab

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed templates/*.yaml templates/*.json
var templatesFS embed.FS

// Built-in range templates.
const (
	TemplateAWSLabNetwork   = "aws-lab-network"
	TemplateAzureLabNetwork = "azure-lab-network"
)

var templateFiles = map[string]string{
	TemplateAWSLabNetwork:   "templates/aws-lab-network.yaml",
	TemplateAzureLabNetwork: "templates/azure-lab-network.json",
}

// Template returns the body of a built-in range template.
func Template(name string) (string, error) {
	path, ok := templateFiles[name]
	if !ok {
		return "", fmt.Errorf("unknown range template %q (available: %s)", name, strings.Join(TemplateNames(), ", "))
	}
	body, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading range template %s: %w", name, err)
	}
	return string(body), nil
}

// TemplateNames lists the built-in range templates in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(templateFiles))
	for name := range templateFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
