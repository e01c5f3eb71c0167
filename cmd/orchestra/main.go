// Command orchestra routes requests to persona agents and runs the tool and critique
// loops against an OpenAI-compatible endpoint such as a local Ollama server.
//
//	orchestra route "Tell me a funny joke about cats"
//	orchestra ask "How do I reverse a list in Python?"
//	orchestra tools "What is (15 + 25) / 2?"
//	orchestra critique "Explain recursion to a beginner"
//	orchestra chat
package main

import (
	"fmt"
	"os"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}
