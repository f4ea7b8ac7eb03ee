package main

import (
	"fmt"
	"io"

	"github.com/dhamidi/trail/query/value"
)

// documentFlags select the data and context documents of a command. An
// empty path falls back to the configuration and "-" reads standard
// input.
type documentFlags struct {
	data    string
	context string
}

func (d *documentFlags) load(opts *globalOptions, stdin io.Reader) (data, context any, err error) {
	dataPath, contextPath := d.data, d.context
	if dataPath == "" {
		dataPath = opts.config.Data
	}
	if contextPath == "" {
		contextPath = opts.config.Context
	}
	if dataPath == "-" && contextPath == "-" {
		return nil, nil, fmt.Errorf("data and context cannot both be read from stdin")
	}

	if data, err = loadDocument(dataPath, stdin); err != nil {
		return nil, nil, fmt.Errorf("load data: %w", err)
	}
	if context, err = loadDocument(contextPath, stdin); err != nil {
		return nil, nil, fmt.Errorf("load context: %w", err)
	}
	return data, context, nil
}

func loadDocument(path string, stdin io.Reader) (any, error) {
	switch path {
	case "":
		return value.Undefined, nil
	case "-":
		text, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		log.Debugf("read %d bytes from stdin", len(text))
		return value.Load(text, "yaml")
	}
	log.Debugf("loading %s", path)
	return value.LoadFile(path)
}
