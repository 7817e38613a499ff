package tracks

import (
	"context"
	"fmt"
	"path/filepath"

	"tracksift/internal/prompt"
)

// ReviewState is a step of the review loop.
type ReviewState int

const (
	// Reviewing shows every file's decisions and asks whether to modify them.
	Reviewing ReviewState = iota
	// AwaitingOverride collects one explicit choice per file.
	AwaitingOverride
	// Finalized is terminal; selections are handed to the synthesizer.
	Finalized
)

func (s ReviewState) String() string {
	switch s {
	case Reviewing:
		return "reviewing"
	case AwaitingOverride:
		return "awaiting_override"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Chooser is the part of the prompt layer the review loop needs.
type Chooser interface {
	MultiSelect(ctx context.Context, message string, options []prompt.Option) ([]int, error)
	Confirm(ctx context.Context, message string, defaultValue bool) (bool, error)
}

// Renderer displays one file's current decisions.
type Renderer func(FileTracks)

// ModifyQuestion is asked after the decisions are shown.
const ModifyQuestion = "Do you want to modify the tracks to be kept?"

// Round records the selections before and after one override pass, indexed
// like ReviewResult.Files.
type Round struct {
	Number int
	Before []Selection
	After  []Selection
}

// ReviewResult is the finalized outcome of the review loop.
type ReviewResult struct {
	Files  []FileTracks
	Rounds []Round
}

// Review runs the show/modify loop until the user declines to modify. Each
// round replaces every file's selection with a new value; the input slice is
// never modified. Cancellation from the chooser is returned unchanged.
func Review(ctx context.Context, chooser Chooser, files []FileTracks, render Renderer) (ReviewResult, error) {
	current := make([]FileTracks, len(files))
	copy(current, files)
	var rounds []Round

	state := Reviewing
	for state != Finalized {
		switch state {
		case Reviewing:
			if render != nil {
				for _, f := range current {
					render(f)
				}
			}
			modify, err := chooser.Confirm(ctx, ModifyQuestion, false)
			if err != nil {
				return ReviewResult{}, err
			}
			if modify {
				state = AwaitingOverride
			} else {
				state = Finalized
			}
		case AwaitingOverride:
			next, round, err := overrideRound(ctx, chooser, current, len(rounds)+1)
			if err != nil {
				return ReviewResult{}, err
			}
			current = next
			rounds = append(rounds, round)
			state = Reviewing
		default:
			return ReviewResult{}, fmt.Errorf("review: unexpected state %s", state)
		}
	}
	return ReviewResult{Files: current, Rounds: rounds}, nil
}

func overrideRound(ctx context.Context, chooser Chooser, files []FileTracks, number int) ([]FileTracks, Round, error) {
	round := Round{
		Number: number,
		Before: make([]Selection, len(files)),
		After:  make([]Selection, len(files)),
	}
	next := make([]FileTracks, len(files))
	for i, f := range files {
		round.Before[i] = f.Selection
		positions := f.Selection.Reviewable()
		if len(positions) == 0 {
			next[i] = f
			round.After[i] = f.Selection
			continue
		}
		options := make([]prompt.Option, len(positions))
		for j, pos := range positions {
			d := f.Selection[pos]
			options[j] = prompt.Option{Label: d.Label(), Selected: d.Keep}
		}
		chosen, err := chooser.MultiSelect(ctx, fmt.Sprintf("Customize tracks for %s", filepath.Base(f.Path)), options)
		if err != nil {
			return nil, Round{}, err
		}
		keep := make([]int, 0, len(chosen))
		for _, idx := range chosen {
			if idx >= 0 && idx < len(positions) {
				keep = append(keep, positions[idx])
			}
		}
		updated := f.Selection.Override(keep)
		next[i] = f.WithSelection(updated)
		round.After[i] = updated
	}
	return next, round, nil
}
