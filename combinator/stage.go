package combinator

import "context"

// stage tracks how far a two-stage combinator call has progressed.
// Stages only move forward; any other transition is a bug and panics.
type stage string

const (
	stageInit  stage = "init"
	stageLeft  stage = "running left"
	stageRight stage = "running right"
	stageDone  stage = "done"
)

func newStage() stage {
	return stageInit
}

func (s stage) advance() stage {
	switch s {
	case stageInit:
		return stageLeft
	case stageLeft:
		return stageRight
	case stageRight:
		return stageDone
	default:
		panic("combinator: advance after " + string(s))
	}
}

// proceed enters the next stage unless ctx is already done, in which case
// the stage is never started and the context error is returned.
func (s *stage) proceed(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		*s = stageDone
		return err
	}
	*s = s.advance()
	return nil
}

// finish ends the call from whichever stage is running.
func (s *stage) finish() {
	if *s != stageLeft && *s != stageRight {
		panic("combinator: finish from " + string(*s))
	}
	*s = stageDone
}
