// Package cli provides the terminal user interface for batch clones.
//
// The package uses [Bubbletea] for the interactive progress view and
// [Lipgloss] for styling. The batch itself runs outside the Bubbletea
// program; its outcomes are streamed into the model as messages.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
