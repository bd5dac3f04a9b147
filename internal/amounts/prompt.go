package amounts

import _ "embed"

//go:embed prompts/detect_amounts.txt
var detectAmountsPrompt string

// Instruction returns the fixed extraction instruction sent with every document.
func Instruction() string {
	return detectAmountsPrompt
}
