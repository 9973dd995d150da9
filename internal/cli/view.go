package cli

import (
	"fmt"

	"github.com/idilsaglam/notish/internal/model"
	"github.com/idilsaglam/notish/internal/notes"
	"github.com/idilsaglam/notish/internal/ui"
)

const maxRowText = 80

// plainView collects what the controller signals; commands print from it.
// Errors are returned to Run, which prints them once.
type plainView struct {
	notes      []model.Note
	empty      bool
	validation string
}

var _ notes.View = (*plainView)(nil)

func (v *plainView) RenderList(ns []model.Note)     { v.notes = ns }
func (v *plainView) ShowEmptyState(empty bool)      { v.empty = empty }
func (v *plainView) ShowValidationError(msg string) { v.validation = msg }
func (v *plainView) ShowError(error)                {}

// panel renders the note list the way `ls` shows it.
func (v *plainView) panel() string {
	t := ui.Current()

	var lines []string
	lines = append(lines, fmt.Sprintf("%s  %s %d",
		t.Title.Render("Notes"),
		t.Accent.Render("Total"), len(v.notes),
	))
	lines = append(lines, "")
	if v.empty {
		lines = append(lines, t.Muted.Render("No notes found!"))
	} else {
		for i, n := range v.notes {
			lines = append(lines, row(i, n))
		}
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `notish add \"Buy milk\"`"))
	return ui.Panel(lines)
}

// row renders one note at a 0-based position as a 1-based line.
func row(pos int, n model.Note) string {
	t := ui.Current()
	return fmt.Sprintf("%s %s %s  %s",
		t.Muted.Render(fmt.Sprintf("%2d.", pos+1)),
		t.Accent.Render(t.SymBullet),
		ui.Truncate(n.Text, maxRowText),
		t.Muted.Render(n.Timestamp.Local().Format("Jan 2")),
	)
}
