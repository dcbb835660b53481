package match

import "log/slog"

// Stage is the progress of one match call.
type Stage int

const (
	StageInit Stage = iota
	StageModeDecided
	StagePrefiltered
	StageClustered
	StageMatched
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageModeDecided:
		return "mode_decided"
	case StagePrefiltered:
		return "prefiltered"
	case StageClustered:
		return "clustered"
	case StageMatched:
		return "matched"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

type progress struct {
	logger *slog.Logger
	stage  Stage
}

func (p *progress) transition(next Stage, args ...any) {
	if p.stage == next {
		return
	}
	prev := p.stage
	p.stage = next
	p.logger.Debug("match stage transition", append([]any{"from", prev.String(), "to", next.String()}, args...)...)
}
