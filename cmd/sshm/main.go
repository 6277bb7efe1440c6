package main

import (
	"context"
	"errors"
	"os"

	"ssh-manager/pkg/session"
	"ssh-manager/pkg/ui"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], ui.Stdio(), session.NewLauncher()))
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, con *ui.Console, launcher *session.Launcher) int {
	a := newApp(con, launcher)
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(con.In)
	root.SetOut(con.Out)
	root.SetErr(con.Err)
	return a.report(root.ExecuteContext(ctx))
}

// report prints err for the user and returns the exit code for it.
func (a *app) report(err error) int {
	var exitErr *session.ExitError
	var notFound *session.ExecutableNotFoundError
	switch {
	case err == nil, errors.Is(err, ui.ErrCancelled):
	case errors.As(err, &exitErr):
		// ssh has already said why.
		a.con.Error("SSH session ended with an error (exit code %d).", exitErr.Code)
	case errors.As(err, &notFound):
		a.con.Error("Error: %v", notFound)
		a.con.Warn("hint: %s", notFound.Hint())
	case errors.Is(err, ui.ErrNoProfiles):
		a.con.Error("No saved connections. Use 'sshm add' to add one.")
	default:
		a.con.Error("Error: %v", err)
	}
	return exitCodeFromErr(err)
}

// exitCodeFromErr maps a command error onto the process exit code:
//   - *session.ExitError: the child's own code
//   - *session.ExecutableNotFoundError: 127, as a shell would
//   - picker cancelled: 130
//   - anything else: 1
func exitCodeFromErr(err error) int {
	var exitErr *session.ExitError
	var notFound *session.ExecutableNotFoundError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &notFound):
		return 127
	case errors.Is(err, ui.ErrCancelled):
		return 130
	default:
		return 1
	}
}
