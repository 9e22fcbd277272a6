// Package apply implements the three-phase move planner that brings a
// selection of matched files into agreement with their indexed intended
// paths: gather candidate moves, validate them against the filesystem and
// against each other without mutating anything, then execute (or, in
// dry-run mode, merely log) the validated plan.
//
// There is no Mutagen equivalent: Mutagen transports and stages files, it
// never renames a user's tree in place. The planner is authored directly
// for this move, reusing the repository package's github.com/pkg/errors
// wrapping convention and the digest-keyed duplicate-content detection
// already present in the index.
package apply

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/filemaster-org/filemaster/pkg/logging"
	"github.com/filemaster-org/filemaster/pkg/repository"
)

// ErrorCode identifies one of the planner's distinct validation failures.
type ErrorCode string

const (
	ErrDestExists   ErrorCode = "E-dest-exists"
	ErrDestCollides ErrorCode = "E-dest-collides"
	ErrParentNotDir ErrorCode = "E-parent-not-dir"
	ErrParentIsDest ErrorCode = "E-parent-is-dest"
)

// PlanError is a validation failure raised during Validate, tagged with
// the specific rule it violated.
type PlanError struct {
	Code    ErrorCode
	Message string
}

func (e *PlanError) Error() string {
	return e.Message
}

// Move is one proposed rename from Source to Destination.
type Move struct {
	Source      string
	Destination string
}

// Plan is the validated set of directory creations and renames needed to
// realize a batch of moves, in the order they must execute.
type Plan struct {
	DirsToCreate []string
	Moves        []Move
}

// Gather proposes a move for every MatchedFile whose indexed intended path
// is set and differs from its current path.
func Gather(root string, files []repository.MatchedFile) []Move {
	var moves []Move
	for _, f := range files {
		intended := f.AggregatedFile.IndexEntry.IntendedPath
		if intended == nil {
			continue
		}
		destination := filepath.Join(root, *intended)
		if destination != f.Path {
			moves = append(moves, Move{Source: f.Path, Destination: destination})
		}
	}
	return moves
}

// Validate checks moves against the filesystem and against each other,
// without mutating anything, and returns the plan to execute. Errors are
// raised in the order the offending move was discovered.
func Validate(moves []Move) (*Plan, error) {
	movesByDestination := make(map[string]Move, len(moves))
	var destinationOrder []string
	dirsToCreate := make(map[string]bool)

	for _, m := range moves {
		if _, err := os.Lstat(m.Destination); err == nil {
			return nil, &PlanError{
				Code:    ErrDestExists,
				Message: fmt.Sprintf("destination already exists: %s", m.Destination),
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "unable to stat %s", m.Destination)
		}

		ancestors, err := ancestorsToCreate(m.Destination, movesByDestination, dirsToCreate)
		if err != nil {
			return nil, err
		}

		if dirsToCreate[m.Destination] {
			return nil, &PlanError{
				Code:    ErrParentIsDest,
				Message: fmt.Sprintf("move destination is itself an ancestor of another move destination: %s", m.Destination),
			}
		}

		if existing, collides := movesByDestination[m.Destination]; collides {
			return nil, &PlanError{
				Code:    ErrDestCollides,
				Message: fmt.Sprintf("%s and %s both move to %s", existing.Source, m.Source, m.Destination),
			}
		}
		movesByDestination[m.Destination] = m
		destinationOrder = append(destinationOrder, m.Destination)

		for _, ancestor := range ancestors {
			dirsToCreate[ancestor] = true
		}
	}

	dirs := make([]string, 0, len(dirsToCreate))
	for dir := range dirsToCreate {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	finalMoves := make([]Move, len(destinationOrder))
	for i, destination := range destinationOrder {
		finalMoves[i] = movesByDestination[destination]
	}

	return &Plan{DirsToCreate: dirs, Moves: finalMoves}, nil
}

// ancestorsToCreate walks upward from the parent of destination, collecting
// directories that don't currently exist and must be created, stopping at
// the first ancestor that already exists (asserting it is a directory) or
// that is already known to need creating.
func ancestorsToCreate(destination string, movesByDestination map[string]Move, alreadyPlanned map[string]bool) ([]string, error) {
	var ancestors []string
	dir := filepath.Dir(destination)

	for {
		if alreadyPlanned[dir] {
			break
		}

		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return nil, &PlanError{
					Code:    ErrParentNotDir,
					Message: fmt.Sprintf("ancestor of %s exists and is not a directory: %s", destination, dir),
				}
			}
			break
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "unable to stat %s", dir)
		}

		if _, isDest := movesByDestination[dir]; isDest {
			return nil, &PlanError{
				Code:    ErrParentIsDest,
				Message: fmt.Sprintf("ancestor of %s is itself a move destination: %s", destination, dir),
			}
		}

		ancestors = append(ancestors, dir)

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ancestors, nil
}

// Execute creates directories and performs renames in plan order. In
// dry-run mode, nothing is mutated; each step is logged instead.
func (p *Plan) Execute(dryRun bool, logger *logging.Logger) error {
	for _, dir := range p.DirsToCreate {
		if dryRun {
			logger.Printf("Would create directory %s", dir)
			continue
		}
		if err := os.Mkdir(dir, 0755); err != nil {
			return errors.Wrapf(err, "unable to create directory %s", dir)
		}
	}

	for _, m := range p.Moves {
		if dryRun {
			logger.Printf("Would move %s -> %s", m.Source, m.Destination)
			continue
		}
		if _, err := os.Lstat(m.Destination); err == nil {
			return errors.Errorf("destination appeared unexpectedly during apply: %s", m.Destination)
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "unable to stat %s", m.Destination)
		}
		if err := os.Rename(m.Source, m.Destination); err != nil {
			return errors.Wrapf(err, "unable to move %s to %s", m.Source, m.Destination)
		}
	}

	return nil
}
