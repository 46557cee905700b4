package types

import (
	"encoding/json"
	"fmt"
)

// Result is the unit of output handed to output providers: one run, one
// playbook summary, one campaign report.
type Result struct {
	Tool     string `json:"tool"`
	Module   string `json:"module"`
	Filename string `json:"-"`
	Data     any    `json:"data"`
}

type ResultOption func(*Result)

func NewResult(tool, module string, data any, opts ...ResultOption) Result {
	r := &Result{
		Tool:   tool,
		Module: module,
		Data:   data,
	}
	for _, opt := range opts {
		opt(r)
	}
	return *r
}

func WithFilename(filename string) ResultOption {
	return func(r *Result) {
		r.Filename = filename
	}
}

func (r Result) String() string {
	data, err := json.MarshalIndent(r.Data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", r.Data)
	}
	return string(data)
}

// OutputProvider consumes results as a command produces them.
type OutputProvider interface {
	Write(result Result) error
}
