package notes

import (
	"context"
	"fmt"

	"github.com/idilsaglam/notish/internal/model"
	"github.com/idilsaglam/notish/internal/store"
)

// Mode tells what an open note dialog will do on confirm.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Session is the short-lived state of one note-entry dialog.
// Position and Note are only meaningful in ModeEdit. Position is where the
// note sat when the dialog opened; confirm follows Note.ID.
type Session struct {
	Mode     Mode
	Position int
	Note     model.Note
}

// Dialog returns the open session, if any.
func (c *Controller) Dialog() (Session, bool) {
	if c.dialog == nil {
		return Session{}, false
	}
	return *c.dialog, true
}

// RequestCreate opens an empty note dialog.
func (c *Controller) RequestCreate() Session {
	c.dialog = &Session{Mode: ModeCreate, Position: -1}
	return *c.dialog
}

// RequestEdit opens a dialog prefilled with the note at position.
func (c *Controller) RequestEdit(position int) (Session, error) {
	n, err := c.At(position)
	if err != nil {
		return Session{}, err
	}
	c.dialog = &Session{Mode: ModeEdit, Position: position, Note: n}
	return *c.dialog, nil
}

// RequestDelete deletes the note at position. Deletion needs no dialog, so
// any open one is left as it is.
func (c *Controller) RequestDelete(ctx context.Context, position int) error {
	_, err := c.Delete(ctx, position)
	return err
}

// ConfirmDialog submits text for the open session. Blank text keeps the
// dialog open; anything else closes it, whether the store accepted the
// change or not.
func (c *Controller) ConfirmDialog(ctx context.Context, text string) error {
	if c.dialog == nil {
		return nil
	}
	if err := c.validate(text); err != nil {
		return err
	}

	s := *c.dialog
	c.dialog = nil

	if s.Mode != ModeEdit {
		_, err := c.Create(ctx, text)
		return err
	}

	// the mirror may have shifted since the dialog opened
	pos := c.indexOf(s.Note.ID)
	if pos < 0 {
		return c.fail("update", fmt.Errorf("note %d: %w", s.Note.ID, store.ErrNotFound))
	}
	_, err := c.Update(ctx, pos, text)
	return err
}

// CancelDialog closes the open session without touching the store.
func (c *Controller) CancelDialog() {
	c.dialog = nil
}
