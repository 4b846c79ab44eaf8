package session

import "errors"

// Admission errors: the requested start conflicts with a live session.
var (
	ErrQuizActive  = errors.New("another quiz is already in progress")
	ErrVoteActive  = errors.New("another vote is already in progress")
	ErrQuizBlocked = errors.New("cannot start a quiz while a vote is in progress")
	ErrVoteBlocked = errors.New("cannot start a vote while a quiz is in progress")
)

// Validation errors: malformed start parameters or submissions.
var (
	ErrInvalidQuiz    = errors.New("a quiz needs a question, an answer, and a positive duration in seconds")
	ErrInvalidVote    = errors.New("a vote needs a question and at least two options")
	ErrEmptyAnswer    = errors.New("answer must not be empty")
	ErrEmptySelection = errors.New("select at least one option")
	ErrInvalidOption  = errors.New("invalid option selected")
	ErrSingleChoice   = errors.New("this is a single-choice vote")
)

// Lifecycle errors.
var (
	ErrNoActiveQuiz = errors.New("no quiz is currently in progress")
	ErrNoActiveVote = errors.New("no vote is currently in progress")
	ErrNoPermission = errors.New("only the session owner may end it")
)
