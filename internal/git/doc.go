// Package git acquires the template repository and gives the generated
// project a fresh history.
//
// Clone performs a shallow clone of the template into the destination.
// Reinit runs after the template's .git directory has been removed: it
// initializes a new repository and optionally registers the template as a
// remote so later template updates can be pulled.
//
// Example Usage:
//
//	exec := shell.NewExecutor()
//	err := git.Clone(ctx, exec, git.CloneOptions{
//	    SourceURL:   "https://github.com/fgarrec0397/Granity.git",
//	    Destination: "/home/me/my-game",
//	    Depth:       1,
//	})
//
// Error Handling:
//
// Commands run through a shell.Runner. A command that exits non-zero is
// reported as ErrCommandFailed wrapped in an OperationError whose Op names
// the git operation. Precondition failures (bad URL, populated destination,
// leftover history) are reported before any command runs.
package git
