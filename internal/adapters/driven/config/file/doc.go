// Package file holds the adapters that keep their state in plain files
// under the Recall config directory: ConfigStore (TOML settings) and
// PromptStore (editable prompt texts). Both are safe for concurrent use.
package file
