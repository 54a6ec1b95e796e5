package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/framecraft/pkg/editor"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/scene"
)

var (
	editHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	editStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	editErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	editDirtyStyle  = lipgloss.NewStyle().Foreground(colorYellow)
)

// editCommand creates the interactive frame editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <file>",
		Short: "Edit the frames of a template interactively",
		Long: `Edit the frames of a template interactively.

  tab / shift+tab   select next / previous frame
  arrows, hjkl      move the selected frame one grid step
  HJKL              shrink / grow the selected frame one grid step
  f                 toggle cover / contain
  n                 add a frame
  x                 delete the selected frame
  s                 save
  q                 quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := c.openTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer ctl.Close()

			m := newEditModel(ctl, args[0])
			final, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if em, ok := final.(editModel); ok && em.dirty {
				printWarning("Unsaved changes discarded")
			}
			return nil
		},
	}
}

// =============================================================================
// editModel - Interactive frame editing
// =============================================================================

// editModel drives a Controller the way a canvas would: it moves and
// resizes surface nodes and reports the edits as events.
type editModel struct {
	ctl    *editor.Controller
	path   string
	status string
	err    error
	dirty  bool
}

func newEditModel(ctl *editor.Controller, path string) editModel {
	m := editModel{ctl: ctl, path: path}
	if frames := ctl.ListFrames(); len(frames) > 0 {
		m.selectFrame(frames[0].ID)
	}
	return m
}

func (m editModel) Init() tea.Cmd {
	return nil
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.err = nil
	m.status = ""
	grid := m.ctl.Grid()

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "left", "h":
		m.transform(func(n scene.Node) { n.SetPosition(n.Position().Add(geom.Point{X: -grid})) })
	case "right", "l":
		m.transform(func(n scene.Node) { n.SetPosition(n.Position().Add(geom.Point{X: grid})) })
	case "up", "k":
		m.transform(func(n scene.Node) { n.SetPosition(n.Position().Add(geom.Point{Y: -grid})) })
	case "down", "j":
		m.transform(func(n scene.Node) { n.SetPosition(n.Position().Add(geom.Point{Y: grid})) })
	case "H":
		m.transform(func(n scene.Node) { resizeNode(n, -grid, 0, grid) })
	case "L":
		m.transform(func(n scene.Node) { resizeNode(n, grid, 0, grid) })
	case "K":
		m.transform(func(n scene.Node) { resizeNode(n, 0, -grid, grid) })
	case "J":
		m.transform(func(n scene.Node) { resizeNode(n, 0, grid, grid) })
	case "f":
		if f, ok := m.selectedFrame(); ok {
			next := f.Fit.Toggle()
			m.apply(m.ctl.UpdateFrame(f.ID, editor.Patch{Fit: &next}))
		}
	case "n":
		f := m.ctl.CreateFrame()
		m.selectFrame(f.ID)
		m.dirty = true
		m.status = "added " + f.Name
	case "x", "delete":
		if f, ok := m.selectedFrame(); ok {
			if m.err = m.ctl.DeleteFrame(f.ID); m.err == nil {
				m.dirty = true
				m.status = "deleted " + f.Name
				m.cycle(0)
			}
		}
	case "s", "ctrl+s":
		if m.err = saveTemplate(m.ctl, m.path); m.err == nil {
			m.dirty = false
			m.status = "saved " + m.path
		}
	}
	return m, nil
}

func (m *editModel) selectFrame(id string) {
	m.err = m.ctl.HandleEvent(scene.Event{Kind: scene.EventSelect, NodeID: id})
}

// cycle moves the selection by delta frames in z-order, wrapping around.
// A delta of 0 selects the first frame when nothing is selected.
func (m *editModel) cycle(delta int) {
	frames := m.ctl.ListFrames()
	if len(frames) == 0 {
		m.selectFrame("")
		return
	}
	cur := -1
	for i, f := range frames {
		if f.ID == m.ctl.Selected() {
			cur = i
		}
	}
	next := 0
	if cur >= 0 {
		next = ((cur+delta)%len(frames) + len(frames)) % len(frames)
	}
	m.selectFrame(frames[next].ID)
}

func (m editModel) selectedFrame() (*frame.Frame, bool) {
	id := m.ctl.Selected()
	if id == "" {
		return nil, false
	}
	return m.ctl.Frame(id)
}

// transform edits the selected frame's node and reports a finished drag.
func (m *editModel) transform(edit func(scene.Node)) {
	id := m.ctl.Selected()
	if id == "" {
		return
	}
	n, ok := m.ctl.Surface().Node(id)
	if !ok {
		return
	}
	edit(n)
	if m.err = m.ctl.HandleEvent(scene.Event{Kind: scene.EventTransform, NodeID: id}); m.err != nil {
		return
	}
	m.err = m.ctl.HandleEvent(scene.Event{Kind: scene.EventTransformEnd, NodeID: id})
	m.dirty = m.err == nil || m.dirty
}

func (m *editModel) apply(_ *frame.Frame, err error) {
	m.err = err
	if err == nil {
		m.dirty = true
	}
}

// resizeNode changes the node's visual size by (dw, dh) through its scale,
// never below minSize.
func resizeNode(n scene.Node, dw, dh, minSize float64) {
	base, s := n.Size(), n.Scale()
	if !base.Valid() {
		return
	}
	w := base.Width*s.X + dw
	h := base.Height*s.Y + dh
	if w < minSize || h < minSize {
		return
	}
	n.SetScale(geom.Scale{X: w / base.Width, Y: h / base.Height})
}

func (m editModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render("framecraft") + " " + StyleDim.Render(m.path)
	if m.dirty {
		title += " " + editDirtyStyle.Render("●")
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(editStatusStyle.Render(fmt.Sprintf("canvas %s · grid %g", formatSize(m.ctl.Canvas()), m.ctl.Grid())))
	if bg, ok := m.ctl.Background(); ok {
		b.WriteString(editStatusStyle.Render(" · background " + bg))
	}
	b.WriteString("\n\n")

	if frames := m.ctl.ListFrames(); len(frames) > 0 {
		b.WriteString(renderFrames(frames, m.ctl.Selected()))
	} else {
		b.WriteString(StyleDim.Render("  no frames, press n to add one"))
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(editErrorStyle.Render(iconError + " " + m.err.Error()))
	case m.status != "":
		b.WriteString(StyleSuccess.Render(iconSuccess + " " + m.status))
	}
	b.WriteString("\n")
	b.WriteString(editHelpStyle.Render("tab select · arrows move · HJKL resize · f fit · n new · x delete · s save · q quit"))
	b.WriteString("\n")
	return b.String()
}
