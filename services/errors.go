package services

import (
	"errors"
	"fmt"
)

// Категории ошибок. Every service error wraps exactly one of these, so
// handlers can classify with errors.Is without knowing the specific error.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("requested resource not found")
	ErrConflict     = errors.New("conflict with the current state of resources")
	ErrInvalidState = errors.New("operation not allowed in the current lifecycle state")
)

// Специфичные ошибки, завернутые в категории.
var (
	// Not found
	ErrTournamentNotFound = fmt.Errorf("%w: tournament", ErrNotFound)
	ErrPhaseNotFound      = fmt.Errorf("%w: phase", ErrNotFound)
	ErrRoundNotFound      = fmt.Errorf("%w: round", ErrNotFound)
	ErrDebateNotFound     = fmt.Errorf("%w: debate", ErrNotFound)
	ErrTeamNotFound       = fmt.Errorf("%w: team", ErrNotFound)
	ErrAttendeeNotFound   = fmt.Errorf("%w: attendee", ErrNotFound)
	ErrMotionNotFound     = fmt.Errorf("%w: motion", ErrNotFound)
	ErrLocationNotFound   = fmt.Errorf("%w: location", ErrNotFound)
	ErrRoomNotFound       = fmt.Errorf("%w: room", ErrNotFound)
	ErrRolesNotFound      = fmt.Errorf("%w: tournament roles for user", ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("%w: debate assignment", ErrNotFound)

	// Validation
	ErrNameRequired          = fmt.Errorf("%w: name is required", ErrValidation)
	ErrInvalidTiming         = fmt.Errorf("%w: timing values must be positive", ErrValidation)
	ErrInvalidGroupSize      = fmt.Errorf("%w: group size must be at least 2", ErrValidation)
	ErrFinalsGroupSize       = fmt.Errorf("%w: a finals phase cannot carry a group size", ErrValidation)
	ErrGroupSizeRequired     = fmt.Errorf("%w: a group phase requires a group size", ErrValidation)
	ErrIndivisibleTeamPool   = fmt.Errorf("%w: team pool does not divide into equal groups", ErrValidation)
	ErrDuplicatePoolEntry    = fmt.Errorf("%w: pool contains a duplicate entry", ErrValidation)
	ErrEmptyTeamPool         = fmt.Errorf("%w: team pool is empty", ErrValidation)
	ErrCrossTournamentEntity = fmt.Errorf("%w: entity belongs to a different tournament", ErrValidation)
	ErrCrossPhasePredecessor = fmt.Errorf("%w: predecessor round belongs to an unrelated phase", ErrValidation)
	ErrNegativeDelta         = fmt.Errorf("%w: point deltas must not be negative", ErrValidation)
	ErrSpeakerNotSeated      = fmt.Errorf("%w: attendee's team is not seated in this debate", ErrValidation)
	ErrMissingRole           = fmt.Errorf("%w: user lacks the required tournament role", ErrValidation)
	ErrInvalidSidePolicy     = fmt.Errorf("%w: unknown side policy", ErrValidation)
	ErrInvalidStatusValue    = fmt.Errorf("%w: unknown status value", ErrValidation)

	// Conflict
	ErrNameConflict         = fmt.Errorf("%w: name is already in use", ErrConflict)
	ErrChainHeadConflict    = fmt.Errorf("%w: the tournament already has an opening phase", ErrConflict)
	ErrSuccessorConflict    = fmt.Errorf("%w: predecessor already has a successor", ErrConflict)
	ErrDrawAlreadyGenerated = fmt.Errorf("%w: a draw already exists for this round", ErrConflict)
	ErrTeamDoubleBooked     = fmt.Errorf("%w: team is already seated in this round", ErrConflict)
	ErrJudgeDoubleBooked    = fmt.Errorf("%w: judge is already seated in this round", ErrConflict)
	ErrRoomOccupied         = fmt.Errorf("%w: room is already occupied", ErrConflict)
	ErrJudgeAffiliated      = fmt.Errorf("%w: judge is affiliated with a seated team", ErrConflict)
	ErrInsufficientJudges   = fmt.Errorf("%w: not enough unaffiliated judges for the panel size", ErrConflict)
	ErrInsufficientRooms    = fmt.Errorf("%w: not enough free rooms for the planned debates", ErrConflict)
	ErrResultDuplicate      = fmt.Errorf("%w: result already recorded for this attendee in this debate", ErrConflict)
	ErrStatusRace           = fmt.Errorf("%w: status changed concurrently, retry the operation", ErrConflict)
	ErrMarshalIsJudge       = fmt.Errorf("%w: marshal is seated as a judge in this round", ErrConflict)

	// Invalid state
	ErrInvalidStatusTransition   = fmt.Errorf("%w: status transition is not allowed", ErrInvalidState)
	ErrPredecessorNotCompleted   = fmt.Errorf("%w: predecessor must be completed first", ErrInvalidState)
	ErrRoundsNotFinished         = fmt.Errorf("%w: phase has unfinished rounds", ErrInvalidState)
	ErrRoundNotInProgress        = fmt.Errorf("%w: results can only be recorded for a round in progress", ErrInvalidState)
	ErrRoundAlreadyStarted       = fmt.Errorf("%w: round has already started", ErrInvalidState)
	ErrRoundHasNoDraw            = fmt.Errorf("%w: round has no draw yet", ErrInvalidState)
	ErrReopenNotAllowed          = fmt.Errorf("%w: only a completed phase or round can be reopened", ErrInvalidState)
	ErrReopenWithSuccessor       = fmt.Errorf("%w: cannot reopen while a successor exists", ErrInvalidState)
	ErrPhaseNotAcceptingRounds   = fmt.Errorf("%w: phase no longer accepts rounds", ErrInvalidState)
	ErrDeleteRequiresDraftStatus = fmt.Errorf("%w: only draft entries can be deleted", ErrInvalidState)
)
