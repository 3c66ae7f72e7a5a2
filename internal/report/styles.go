package report

import "github.com/charmbracelet/lipgloss"

var (
	addColor      = lipgloss.Color("#10B981") // green
	removeColor   = lipgloss.Color("#F87171") // red
	completeColor = lipgloss.Color("#22D3EE") // cyan
	statusColor   = lipgloss.Color("#E879F9") // magenta
	bannerColor   = lipgloss.Color("#60A5FA") // blue
	textColor     = lipgloss.Color("#F9FAFB")
)

// palette holds the console styles for each line kind.
type palette struct {
	event    lipgloss.Style
	add      lipgloss.Style
	remove   lipgloss.Style
	complete lipgloss.Style
	status   lipgloss.Style
	banner   lipgloss.Style
	section  lipgloss.Style
	good     lipgloss.Style
	bad      lipgloss.Style
}

func newPalette(color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{plain, plain, plain, plain, plain, plain, plain, plain, plain}
	}
	return palette{
		event:    lipgloss.NewStyle().Foreground(textColor),
		add:      lipgloss.NewStyle().Foreground(addColor),
		remove:   lipgloss.NewStyle().Foreground(removeColor),
		complete: lipgloss.NewStyle().Foreground(completeColor),
		status:   lipgloss.NewStyle().Foreground(statusColor),
		banner:   lipgloss.NewStyle().Bold(true).Foreground(bannerColor),
		section:  lipgloss.NewStyle().Bold(true).Foreground(textColor),
		good:     lipgloss.NewStyle().Foreground(addColor),
		bad:      lipgloss.NewStyle().Foreground(removeColor),
	}
}
