// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the user's ~/.sercha-voice directory.
//
// Adapters:
//   - ConfigStore: TOML configuration with dot-notation keys
//   - PromptStore: user-editable prompt templates with embedded defaults
package file
