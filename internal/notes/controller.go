// Package notes holds the controller that mediates between a note list view
// and a store. It owns the in-memory mirror of persisted notes.
package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/idilsaglam/notish/internal/model"
	"github.com/idilsaglam/notish/internal/store"
)

// ValidationMessage is shown when a blank note is submitted.
const ValidationMessage = "Enter Note!"

// ErrBlankNote is returned when note text is empty or whitespace only.
var ErrBlankNote = errors.New("note text is blank")

// PositionError reports a list position outside the mirror.
type PositionError struct {
	Position int
	Len      int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position out of range: have %d, got %d", e.Len, e.Position+1)
}

// View renders the mirror and user-visible messages.
type View interface {
	RenderList(notes []model.Note)
	ShowEmptyState(empty bool)
	ShowValidationError(msg string)
	ShowError(err error)
}

type nopView struct{}

func (nopView) RenderList([]model.Note)    {}
func (nopView) ShowEmptyState(bool)        {}
func (nopView) ShowValidationError(string) {}
func (nopView) ShowError(error)            {}

// Controller applies each mutation to the store first and to the mirror
// only once the store has accepted it.
type Controller struct {
	store  store.Store
	log    *zap.SugaredLogger
	view   View
	mirror []model.Note
	dialog *Session
}

// New returns a controller over s with an empty mirror. Call Load to fill it.
func New(s store.Store, log *zap.SugaredLogger) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Controller{store: s, log: log, view: nopView{}}
}

// Attach sets the view signalled after every change.
func (c *Controller) Attach(v View) {
	if v == nil {
		v = nopView{}
	}
	c.view = v
}

// Notes returns a copy of the mirror, newest first.
func (c *Controller) Notes() []model.Note {
	out := make([]model.Note, len(c.mirror))
	copy(out, c.mirror)
	return out
}

func (c *Controller) Len() int { return len(c.mirror) }

// At returns the note at position.
func (c *Controller) At(position int) (model.Note, error) {
	if err := c.checkPosition(position); err != nil {
		return model.Note{}, err
	}
	return c.mirror[position], nil
}

// Load replaces the mirror with the store contents.
func (c *Controller) Load(ctx context.Context) error {
	all, err := c.store.All(ctx)
	if err != nil {
		c.view.ShowError(err)
		return fmt.Errorf("load: %w", err)
	}
	c.mirror = all
	c.refresh()
	return nil
}

// Create inserts text, reads back the canonical row and prepends it.
func (c *Controller) Create(ctx context.Context, text string) (model.Note, error) {
	if err := c.validate(text); err != nil {
		return model.Note{}, err
	}

	id, err := c.store.Insert(ctx, text)
	if err != nil {
		return model.Note{}, c.fail("create", err)
	}
	n, err := c.store.Get(ctx, id)
	if err != nil {
		// the row exists; reload so the mirror still matches the table
		c.resync(ctx)
		return model.Note{}, c.fail("create", err)
	}

	c.mirror = append([]model.Note{n}, c.mirror...)
	c.log.Infow("note created", "id", n.ID)
	c.refresh()
	return n, nil
}

// Update replaces the text of the note at position.
func (c *Controller) Update(ctx context.Context, position int, text string) (model.Note, error) {
	if err := c.checkPosition(position); err != nil {
		return model.Note{}, err
	}
	if err := c.validate(text); err != nil {
		return model.Note{}, err
	}

	n := c.mirror[position]
	n.Text = text
	if err := c.store.Update(ctx, n); err != nil {
		return model.Note{}, c.fail("update", err)
	}

	c.mirror[position] = n
	c.log.Infow("note updated", "id", n.ID)
	c.refresh()
	return n, nil
}

// Delete removes the note at position from the store, then from the mirror.
func (c *Controller) Delete(ctx context.Context, position int) (model.Note, error) {
	if err := c.checkPosition(position); err != nil {
		return model.Note{}, err
	}

	n := c.mirror[position]
	if err := c.store.Delete(ctx, n); err != nil {
		return model.Note{}, c.fail("delete", err)
	}

	c.mirror = append(c.mirror[:position], c.mirror[position+1:]...)
	c.log.Infow("note deleted", "id", n.ID)
	c.refresh()
	return n, nil
}

func (c *Controller) validate(text string) error {
	if strings.TrimSpace(text) == "" {
		c.view.ShowValidationError(ValidationMessage)
		return ErrBlankNote
	}
	return nil
}

// indexOf returns the mirror position of the note with id, or -1.
func (c *Controller) indexOf(id int64) int {
	for i, n := range c.mirror {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) checkPosition(position int) error {
	if position < 0 || position >= len(c.mirror) {
		return &PositionError{Position: position, Len: len(c.mirror)}
	}
	return nil
}

// fail surfaces a store error and re-renders the untouched mirror.
func (c *Controller) fail(op string, err error) error {
	c.log.Errorw("note "+op+" failed", "error", err)
	c.view.ShowError(err)
	c.refresh()
	return fmt.Errorf("%s: %w", op, err)
}

// resync replaces the mirror with the store contents, keeping the old
// mirror if that read fails too.
func (c *Controller) resync(ctx context.Context) {
	all, err := c.store.All(ctx)
	if err != nil {
		c.log.Errorw("mirror resync failed", "error", err)
		return
	}
	c.mirror = all
}

func (c *Controller) refresh() {
	c.view.RenderList(c.Notes())
	c.view.ShowEmptyState(len(c.mirror) == 0)
}
