// Package ui styles terminal output and asks the user questions.
//
// [Palette] wraps [lipgloss] styles for titles, success, failure, warnings and help text.
//
// A [Prompter] asks one-line questions and yes/no confirmations:
//   - [TeaPrompter] runs a small bubbletea program around a bubbles/textinput field, following the
//     standard Init/Update/View pattern, with contextual help rendered by bubbles/help
//   - [LinePrompter] reads plain lines, for pipes and tests
//
// [NewPrompter] picks one based on whether the input is a terminal.
//
// Cancelling a prompt (ctrl+c or esc) returns [shared.ErrAborted].
package ui
