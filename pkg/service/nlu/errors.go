package nlu

import "github.com/m-mizutani/goerr/v2"

var (
	ErrUnsupportedMode = goerr.New("unsupported NLU mode")
	ErrEmptyResponse   = goerr.New("empty LLM response")
)
