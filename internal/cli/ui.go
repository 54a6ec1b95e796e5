package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/framecraft/pkg/frame"
)

// uiOut receives the human-readable status lines. Machine-readable output
// (templates, completion scripts) goes to the command's own writer instead.
var uiOut io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for frame names and template ids.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCell        = lipgloss.NewStyle().Foreground(colorWhite)

	// Fit policies get their own colors so cover and contain frames can be
	// told apart at a glance in tables and the editor.
	styleFitCover   = lipgloss.NewStyle().Foreground(colorCyan)
	styleFitContain = lipgloss.NewStyle().Foreground(colorBlue)
)

// status line kinds: icon and icon color
var (
	statusSuccess = statusKind{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = statusKind{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	statusWarning = statusKind{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	statusInfo    = statusKind{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconArrow   = "→"
)

type statusKind struct {
	icon  string
	style lipgloss.Style
}

func (k statusKind) print(msg string) {
	fmt.Fprintln(uiOut, k.style.Render(k.icon)+" "+msg)
}

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	statusSuccess.print(fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	statusError.print(fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	statusWarning.print(StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	statusInfo.print(fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a file that was written.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(uiOut, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(uiOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Tables
// =============================================================================

// newTable returns a rounded table with the shared header style. cell
// styles body cells; row indexes start at 0 below the header.
func newTable(headers []string, rows [][]string, cell func(row, col int) lipgloss.Style) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return cell(row, col)
		})
}

// fitStyle colors a fit policy.
func fitStyle(f frame.Fit) lipgloss.Style {
	if f == frame.FitContain {
		return styleFitContain
	}
	return styleFitCover
}
