package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/notish/internal/config"
	"github.com/idilsaglam/notish/internal/logs"
	"github.com/idilsaglam/notish/internal/notes"
	"github.com/idilsaglam/notish/internal/store/sqlstore"
	"github.com/idilsaglam/notish/internal/ui"
)

// usageError marks bad invocations; they exit with code 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}

// app is everything a subcommand needs, opened per invocation.
type app struct {
	log  *zap.SugaredLogger
	db   *sqlstore.Store
	ctrl *notes.Controller
	view *plainView
	out  io.Writer
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}

	ui.Fail(stderr, err.Error())
	var pe *notes.PositionError
	if errors.As(err, &pe) {
		fmt.Fprintln(stderr, ui.Current().Muted.Render("Hint: run `notish ls` to see valid positions"))
	}

	var ue *usageError
	switch {
	case errors.As(err, &ue), errors.As(err, &pe), errors.Is(err, notes.ErrBlankNote):
		return 2
	}
	return 1
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags config.Flags

	root := &cobra.Command{
		Use:   "notish",
		Short: "notish - a single-screen note list",
		Long: `notish keeps free-text notes in a local SQLite database.
Run without a subcommand to open the interactive list.`,
		Example: `  notish add "Buy milk"
  notish ls
  notish edit 2 "Buy oat milk"
  notish rm 1`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown subcommand: %s", args[0])
			}
			return nil
		},
		RunE: withApp(&flags, runTUI),
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usagef("%v", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&flags.ConfigFile, "config", "", "config file (default ~/.notish/config.yaml)")
	pf.StringVar(&flags.DBPath, "db", "", "database file (default ~/.notish/notes.db)")
	pf.StringVar(&flags.Theme, "theme", "", "color theme: classic, neon or mono")

	root.AddCommand(
		&cobra.Command{
			Use:   "ui",
			Short: "Open the interactive note list",
			Args:  cobra.NoArgs,
			RunE:  withApp(&flags, runTUI),
		},
		&cobra.Command{
			Use:   "ls",
			Short: "List notes, newest first",
			RunE:  withApp(&flags, doList),
		},
		&cobra.Command{
			Use:   "add <text...>",
			Short: "Add a new note (text can be multiple words)",
			RunE:  withApp(&flags, doAdd),
		},
		&cobra.Command{
			Use:   "edit <position> <text...>",
			Short: "Replace the text of the note at a 1-based position",
			RunE:  withApp(&flags, doEdit),
		},
		&cobra.Command{
			Use:   "rm <position>",
			Short: "Remove the note at a 1-based position",
			RunE:  withApp(&flags, doRemove),
		},
		&cobra.Command{
			Use:   "find <query...>",
			Short: "Fuzzy search note texts",
			RunE:  withApp(&flags, doFind),
		},
		&cobra.Command{
			Use:   "export <file>",
			Short: "Write all notes to a JSON file",
			RunE:  withApp(&flags, doExport),
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Add the notes of a JSON export",
			RunE:  withApp(&flags, doImport),
		},
		&cobra.Command{
			Use:   "schema <create|drop>",
			Short: "Create or drop the notes table",
			RunE:  withApp(&flags, doSchema),
		},
	)
	return root
}

// withApp opens config, logger and store around fn and closes them afterwards.
func withApp(flags *config.Flags, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(*flags)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		ui.SetTheme(cfg.Theme)

		log, err := logs.New("notish", cfg.LogPath, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		ctx := cmd.Context()
		db, err := sqlstore.Open(ctx, cfg.DBPath,
			sqlstore.WithLogger(log),
			sqlstore.WithOperationTimeout(cfg.OperationTimeout),
		)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Errorf("could not close db gracefully: %s", err)
			}
		}()

		a := &app{
			log:  log,
			db:   db,
			ctrl: notes.New(db, log),
			view: &plainView{},
			out:  cmd.OutOrStdout(),
		}
		log.Infow("command", "name", cmd.Name(), "args", len(args))
		return fn(ctx, a, args)
	}
}

// load attaches the plain view and fills the mirror.
func (a *app) load(ctx context.Context) error {
	a.ctrl.Attach(a.view)
	return a.ctrl.Load(ctx)
}

// fail prefixes err with op, adding the validation message the view received.
func (a *app) fail(op string, err error) error {
	if errors.Is(err, notes.ErrBlankNote) && a.view.validation != "" {
		return fmt.Errorf("%s: %s (%w)", op, a.view.validation, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// parsePosition turns a 1-based argument into a mirror position.
func parsePosition(cmdName, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, usagef("%s: not a number: %s", cmdName, arg)
	}
	return n - 1, nil
}

func joinText(args []string) string {
	return strings.Join(args, " ")
}
