package app

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type bannerStyles struct {
	title lipgloss.Style
	url   lipgloss.Style
	hint  lipgloss.Style
}

func newBannerStyles(w io.Writer) bannerStyles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return bannerStyles{title: plain, url: plain, hint: plain}
	}
	r := lipgloss.NewRenderer(w)
	return bannerStyles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		url:   r.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#36CFC9")),
		hint:  r.NewStyle().Faint(true),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printBanner announces where the server is listening.
func printBanner(w io.Writer, root, url string) {
	s := newBannerStyles(w)
	fmt.Fprintf(w, "%s %s at %s\n", s.title.Render("Serving"), root, s.url.Render(url))
	fmt.Fprintln(w, s.hint.Render("Press Ctrl+C to stop"))
}

func printStopped(w io.Writer) {
	s := newBannerStyles(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.title.Render("Server stopped"))
}
