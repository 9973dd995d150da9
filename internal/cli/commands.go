package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/idilsaglam/notish/internal/model"
	"github.com/idilsaglam/notish/internal/notes"
	"github.com/idilsaglam/notish/internal/store/jsonstore"
	"github.com/idilsaglam/notish/internal/tui"
	"github.com/idilsaglam/notish/internal/ui"
)

// -------------- subcommand impls ----------------

func runTUI(ctx context.Context, a *app, _ []string) error {
	if err := tui.Run(ctx, a.ctrl); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func doList(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return usagef("usage: notish ls")
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.view.panel())
	return nil
}

func doAdd(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usagef("usage: notish add <text...>")
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	n, err := a.ctrl.Create(ctx, joinText(args))
	if err != nil {
		return a.fail("add", err)
	}
	ui.OK(a.out, fmt.Sprintf("added note %d", n.ID))
	return nil
}

func doEdit(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return usagef("usage: notish edit <position> <text...>")
	}
	pos, err := parsePosition("edit", args[0])
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	if _, err := a.ctrl.Update(ctx, pos, joinText(args[1:])); err != nil {
		return a.fail("edit", err)
	}
	ui.OK(a.out, "updated")
	return nil
}

func doRemove(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usagef("usage: notish rm <position>")
	}
	pos, err := parsePosition("rm", args[0])
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	if _, err := a.ctrl.Delete(ctx, pos); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	ui.OK(a.out, "removed")
	return nil
}

// noteSource lets fuzzy search the mirror.
type noteSource []model.Note

func (s noteSource) String(i int) string { return s[i].Text }
func (s noteSource) Len() int            { return len(s) }

func doFind(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usagef("usage: notish find <query...>")
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	t := ui.Current()
	all := a.ctrl.Notes()
	matches := fuzzy.FindFrom(joinText(args), noteSource(all))
	if len(matches) == 0 {
		fmt.Fprintln(a.out, t.Muted.Render("no matches"))
		return nil
	}
	for _, m := range matches {
		fmt.Fprintln(a.out, row(m.Index, all[m.Index]))
	}
	return nil
}

func doExport(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usagef("usage: notish export <file>")
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	all := a.ctrl.Notes()
	if err := jsonstore.Save(args[0], all); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	ui.OK(a.out, fmt.Sprintf("exported %d notes", len(all)))
	return nil
}

func doImport(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usagef("usage: notish import <file>")
	}
	// Load treats a missing file as empty; an import path must exist
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	in, err := jsonstore.Load(args[0])
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	// oldest first, so the newest imported note ends up on top
	slices.SortStableFunc(in, func(x, y model.Note) int {
		if c := x.Timestamp.Compare(y.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})

	imported, skipped := 0, 0
	for _, n := range in {
		if _, err := a.ctrl.Create(ctx, n.Text); err != nil {
			if errors.Is(err, notes.ErrBlankNote) {
				skipped++
				continue
			}
			return fmt.Errorf("import: %w", err)
		}
		imported++
	}
	a.log.Infow("import", "file", args[0], "imported", imported, "skipped", skipped)

	msg := fmt.Sprintf("imported %d notes", imported)
	if skipped > 0 {
		msg += fmt.Sprintf(" (%d blank skipped)", skipped)
	}
	ui.OK(a.out, msg)
	return nil
}

func doSchema(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usagef("usage: notish schema <create|drop>")
	}
	switch args[0] {
	case "create":
		if err := a.db.CreateSchema(ctx); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		ui.OK(a.out, "created schema")
	case "drop":
		if err := a.db.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		ui.OK(a.out, "dropped schema")
	default:
		return usagef("usage: notish schema <create|drop>")
	}
	return nil
}
