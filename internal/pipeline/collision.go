package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/batchrename/internal/rename"
)

// proposal is one computed (old path, new path) rename pair.
type proposal struct {
	oldPath string
	oldName string
	newName string
	newPath string
}

// finalize classifies the batch's proposals and, outside preview mode,
// applies the surviving renames. Proposals where nothing changes are
// no-ops and never surface; colliding proposals are reported and
// excluded; failures during execution are isolated per file.
func (p *Processor) finalize(cfg *rename.Config, proposals []proposal, result *rename.Result) {
	var changes []proposal
	for _, prop := range proposals {
		if prop.oldPath != prop.newPath {
			changes = append(changes, prop)
		}
	}
	result.FilesToRename = len(changes)

	for _, prop := range changes {
		result.PreviewData = append(result.PreviewData, rename.Pair{OldName: prop.oldName, NewName: prop.newName})
	}

	// Two inputs mapping to one output: nobody wins, nobody is renamed.
	byTarget := make(map[string][]proposal)
	for _, prop := range changes {
		byTarget[prop.newPath] = append(byTarget[prop.newPath], prop)
	}

	internal := make(map[string]bool)
	var targets []string
	for target, group := range byTarget {
		if len(group) > 1 {
			targets = append(targets, target)
		}
	}
	sort.Strings(targets)
	for _, target := range targets {
		group := byTarget[target]
		record := rename.InternalCollision{
			NewName: group[0].newName,
			NewPath: target,
		}
		for _, prop := range group {
			record.OldNames = append(record.OldNames, prop.oldName)
			internal[prop.oldPath] = true
			result.Collisions++
		}
		result.InternalCollisions = append(result.InternalCollisions, record)
	}

	// Old paths being renamed away may be reused as targets within the
	// same batch without counting as existing-file collisions.
	renamedAway := make(map[string]bool)
	for _, prop := range changes {
		if !internal[prop.oldPath] {
			renamedAway[prop.oldPath] = true
		}
	}

	var survivors []proposal
	for _, prop := range changes {
		if internal[prop.oldPath] {
			continue
		}
		if _, err := os.Lstat(prop.newPath); err == nil && !renamedAway[prop.newPath] {
			result.Collisions++
			result.ExistingCollisions = append(result.ExistingCollisions, rename.ExistingCollision{
				OldName: prop.oldName,
				NewName: prop.newName,
				NewPath: prop.newPath,
			})
			continue
		}
		survivors = append(survivors, prop)
	}

	if cfg.Preview {
		return
	}

	p.execute(survivors, result)
}

// renameOp is one filesystem move in the execution plan. Breaking a
// rename cycle parks a file under a temporary name first; only the
// final hop of a proposal counts as a completed rename.
type renameOp struct {
	idx   int // index into the survivor slice
	from  string
	to    string
	final bool
}

// orderRenames sequences the surviving proposals so that a rename whose
// target is another survivor's current path runs only after that path
// has been vacated. In a chain like a→b, b→c the b→c move goes first;
// a pure cycle (two files swapping names) is broken by moving one file
// to a temporary name and bringing it back once its target is free.
func orderRenames(survivors []proposal) []renameOp {
	type source struct {
		idx  int
		from string
	}

	pending := make([]source, len(survivors))
	occupied := make(map[string]bool, len(survivors))
	for i, prop := range survivors {
		pending[i] = source{idx: i, from: prop.oldPath}
		occupied[prop.oldPath] = true
	}

	var ops []renameOp
	for len(pending) > 0 {
		var deferred []source
		for _, src := range pending {
			target := survivors[src.idx].newPath
			if occupied[target] {
				deferred = append(deferred, src)
				continue
			}
			ops = append(ops, renameOp{idx: src.idx, from: src.from, to: target, final: true})
			delete(occupied, src.from)
		}
		if len(deferred) == len(pending) {
			// Every remaining proposal waits on another: a cycle. Park
			// the first file out of the way so the rest can drain.
			src := deferred[0]
			ops = append(ops, renameOp{idx: src.idx, from: src.from, to: src.from + ".renaming"})
			delete(occupied, src.from)
			deferred[0].from = src.from + ".renaming"
		}
		pending = deferred
	}
	return ops
}

// execute applies the ordered plan. Failures are isolated per file; a
// source that could not be moved keeps its path occupied, so any later
// move into that path is refused rather than overwriting it.
func (p *Processor) execute(survivors []proposal, result *rename.Result) {
	failed := make(map[int]bool)
	blocked := make(map[string]bool)

	recordFailure := func(op renameOp, message string) {
		result.Errors++
		result.ErrorDetails = append(result.ErrorDetails, rename.ErrorDetail{
			File:    survivors[op.idx].oldName,
			Message: message,
		})
		failed[op.idx] = true
		blocked[op.from] = true
	}

	for _, op := range orderRenames(survivors) {
		if failed[op.idx] {
			continue
		}
		if blocked[op.to] {
			recordFailure(op, "rename failed: target "+op.to+" is still occupied")
			continue
		}
		if dir := filepath.Dir(op.to); dir != filepath.Dir(op.from) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				recordFailure(op, "rename failed: "+err.Error())
				continue
			}
		}
		if err := os.Rename(op.from, op.to); err != nil {
			recordFailure(op, "rename failed: "+err.Error())
			continue
		}
		if op.final {
			prop := survivors[op.idx]
			slog.Debug("renamed", "old", prop.oldName, "new", prop.newName)
			result.FilesRenamed++
		}
	}
}
