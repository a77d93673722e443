package domain

import "errors"

var (
	// ErrCountdownNotFound is returned when a countdown id is unknown.
	ErrCountdownNotFound = errors.New("countdown not found")
	// ErrInvalidLaunchDate indicates a launch date that could not be parsed.
	ErrInvalidLaunchDate = errors.New("invalid launch date")
	// ErrEmptyTitle is returned for countdowns without a title.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrQuestionNotFound indicates a question id is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidAnswerType is returned for answer types other than exact and any.
	ErrInvalidAnswerType = errors.New("invalid answer type")
	// ErrMissingExpectedAnswer is returned when an exact question has no expected answer.
	ErrMissingExpectedAnswer = errors.New("exact questions require an expected answer")
	// ErrInvalidOrder is returned for non-positive question orders.
	ErrInvalidOrder = errors.New("question order must be positive")
	// ErrInvalidReorder is returned when a reorder list is not a permutation of the active questions.
	ErrInvalidReorder = errors.New("reorder list must contain every active question exactly once")

	// ErrEmptyAnswer is returned for blank submissions; they never reach storage.
	ErrEmptyAnswer = errors.New("answer must not be empty")
	// ErrNotNextQuestion is returned when a submission targets anything but the user's next question.
	ErrNotNextQuestion = errors.New("question is not the next question for this user")
	// ErrProgressCompleted is returned when a user with no remaining questions submits an answer.
	ErrProgressCompleted = errors.New("all questions already answered")
	// ErrAlreadyAnswered is returned when storage already holds an answer for the user and question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrSubmissionInProgress is returned while another submission for the same user is outstanding.
	ErrSubmissionInProgress = errors.New("another submission is in progress")
)
