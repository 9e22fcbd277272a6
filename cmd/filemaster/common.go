package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/filemaster-org/filemaster/cmd"
	"github.com/filemaster-org/filemaster/pkg/apply"
	"github.com/filemaster-org/filemaster/pkg/digest"
	"github.com/filemaster-org/filemaster/pkg/logging"
	"github.com/filemaster-org/filemaster/pkg/repository"
	"github.com/filemaster-org/filemaster/pkg/usererror"
)

// newLogger constructs the root logger for this invocation, writing to
// standard error at the level named by --log-level.
func newLogger() (*logging.Logger, error) {
	level, ok := logging.NameToLevel(rootConfiguration.logLevel)
	if !ok {
		return nil, usererror.Newf("invalid log level: %s", rootConfiguration.logLevel)
	}
	return logging.NewLogger(level, os.Stderr), nil
}

// sessionOptions builds repository.Options shared by every subcommand:
// the resolved root, whether -U suppresses the cache update, and a status-
// line-driven progress sink (unless standard output isn't a terminal, in
// which case the sink still updates but never animates).
func sessionOptions(clearCache bool) (repository.Options, *logging.Logger, error) {
	logger, err := newLogger()
	if err != nil {
		return repository.Options{}, nil, err
	}

	printer := &cmd.StatusLinePrinter{}
	sink := cmd.NewCacheProgressSink(runContext, printer)

	return repository.Options{
		RootDir:      rootConfiguration.root,
		ClearCache:   clearCache,
		UpdateCache:  !rootConfiguration.noUpdate,
		ProgressSink: sink,
		Logger:       logger,
	}, logger, nil
}

// relativeTo returns path relative to root for display, falling back to
// path itself if it can't be made relative (which shouldn't happen for
// paths drawn from a repository's own FileSet).
func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// isDescendantOrSelf reports whether path is root or a descendant of root.
func isDescendantOrSelf(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// resolveArg resolves a single command-line path argument to an absolute,
// symlink-evaluated path, the same way repository.BuildFileSet does, so
// that the two stay consistent.
func resolveArg(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrapf(err, "unable to resolve %s", p)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", usererror.Newf("path does not exist: %s", p)
		}
		return "", errors.Wrapf(err, "unable to resolve symlinks in %s", p)
	}
	if _, err := os.Stat(resolved); err != nil {
		return "", errors.Wrapf(err, "unable to stat %s", p)
	}
	return resolved, nil
}

// matchedRootFor returns the most specific resolved argument that file
// descends from: the argument path itself (file or directory alike), or
// that argument's parent directory when bumpToParent is set (the intended
// path ends in a separator, so the argument's own basename must appear in
// the relative suffix rather than being absorbed into the match).
func matchedRootFor(file string, args []string, bumpToParent bool) string {
	best := ""
	for _, arg := range args {
		root := arg
		if bumpToParent {
			root = filepath.Dir(arg)
		}
		if isDescendantOrSelf(root, file) && len(root) > len(best) {
			best = root
		}
	}
	return best
}

// setIntendedPath updates the IntendedPath of the aggregated entry sharing
// hash, wherever it is in repo.AggregatedFiles. Association is by content
// hash, not path, so a file renamed externally after being selected for
// set still carries the assignment (the property that an intended path
// survives a rename-then-rescan).
func setIntendedPath(repo *repository.Repository, hash digest.Digest, intended *string) {
	for i := range repo.AggregatedFiles {
		if repo.AggregatedFiles[i].IndexEntry.Hash == hash {
			repo.AggregatedFiles[i].IndexEntry.IntendedPath = intended
			return
		}
	}
}

// rootRelativeDestination resolves raw (a cwd-relative or absolute path)
// against cwd, validates it lies within root, and returns it relative to
// root. An empty result (the root itself) is rejected: an intended path
// must name a location inside the repository, not the repository root.
func rootRelativeDestination(root, raw string) (string, error) {
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", errors.Wrapf(err, "unable to resolve %s", raw)
	}
	if !isDescendantOrSelf(root, abs) {
		return "", usererror.Newf("intended path is outside the repository: %s", raw)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", errors.Wrapf(err, "unable to compute relative path for %s", raw)
	}
	if rel == "." {
		return "", usererror.Newf("intended path must not be empty: %s", raw)
	}
	return rel, nil
}

// runApply gathers, validates, and executes (or dry-runs) a move plan over
// files, reporting a friendly summary. It is shared by `apply` and
// `set --apply`.
func runApply(repo *repository.Repository, files []repository.MatchedFile, dryRun bool) error {
	if err := apply.CheckDuplicateSelection(files); err != nil {
		return err
	}

	moves := apply.Gather(repo.Root, files)
	if len(moves) == 0 {
		fmt.Println("Nothing to do.")
		return nil
	}

	plan, err := apply.Validate(moves)
	if err != nil {
		return err
	}

	if err := plan.Execute(dryRun, repo.Logger()); err != nil {
		return err
	}

	verb := "Moved"
	if dryRun {
		verb = "Would move"
	}
	fmt.Printf("%s %d file(s).\n", verb, len(plan.Moves))
	return nil
}
