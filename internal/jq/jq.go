package jq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/itchyny/gojq"
)

func PerformJqQueryOnFile(filePath string, jqQuery string) ([]byte, error) {
	// Read the content of the JSON file
	jsonContent, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return PerformJqQuery(jsonContent, jqQuery)
}

// PerformJqQuery applies jqQuery to jsonContent and returns the emitted
// values, one JSON document per line.
func PerformJqQuery(jsonContent []byte, jqQuery string) ([]byte, error) {
	if jqQuery == "" {
		return nil, fmt.Errorf("jq query is empty")
	}

	query, err := gojq.Parse(jqQuery)
	if err != nil {
		return nil, fmt.Errorf("parsing jq query %q: %w", jqQuery, err)
	}

	var input any
	if err := json.Unmarshal(jsonContent, &input); err != nil {
		return nil, fmt.Errorf("parsing input JSON: %w", err)
	}

	var buf bytes.Buffer
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, err
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(out)
	}

	return buf.Bytes(), nil
}
