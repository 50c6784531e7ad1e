package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Styles returns the default [Palette].
func Styles() *Palette {
	return styles
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	under lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		under: lipgloss.NewStyle().Underline(true),
	}
}

func (p *Palette) Title(s string) string     { return p.title.Render(s) }
func (p *Palette) OK(s string) string        { return p.ok.Render(s) }
func (p *Palette) Err(s string) string       { return p.err.Render(s) }
func (p *Palette) Warn(s string) string      { return p.warn.Render(s) }
func (p *Palette) Help(s string) string      { return p.help.Render(s) }
func (p *Palette) Underline(s string) string { return p.under.Render(s) }

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
