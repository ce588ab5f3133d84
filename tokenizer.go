package main

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts the tokens a model would see for a piece of text.
type Tokenizer interface {
	CountTokens(text string) int
}

type tiktokenCounter struct {
	ttk *tiktoken.Tiktoken
}

func (w *tiktokenCounter) CountTokens(text string) int {
	return len(w.ttk.EncodeOrdinary(text))
}

const defaultTiktokenModel = "gpt-4o"

// loadTiktoken returns a tokenizer for model, falling back to the default
// model when the name is unknown.
func loadTiktoken(model string, con *console) (Tokenizer, error) {
	if model == "" {
		model = defaultTiktokenModel
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		con.Warnf("Tiktoken model '%s' not found, falling back to '%s': %v", model, defaultTiktokenModel, err)
		tke, err = tiktoken.EncodingForModel(defaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding for default model '%s': %w", defaultTiktokenModel, err)
		}
	}
	return &tiktokenCounter{ttk: tke}, nil
}
