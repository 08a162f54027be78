package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizInactive is returned when an attempt is started on a deactivated quiz.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrNotSignedIn is returned when an anonymous caller tries to start an attempt.
	ErrNotSignedIn = errors.New("sign in to take this quiz")
	// ErrNotAssigned is returned when the quiz has not been assigned to the caller.
	ErrNotAssigned = errors.New("this quiz has not been assigned to you")
	// ErrRoleNotPermitted is returned for roles that may not take quizzes.
	ErrRoleNotPermitted = errors.New("your role is not permitted to take quizzes")
	// ErrNoMatchingQuestions is returned when the difficulty filter leaves nothing to ask.
	ErrNoMatchingQuestions = errors.New("no questions match the selected difficulty")

	// ErrAttemptNotFound is returned for unknown attempts or attempts owned by someone else.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptNotInProgress is returned when answering an attempt that has not started.
	ErrAttemptNotInProgress = errors.New("attempt is not in progress")
	// ErrAttemptAlreadyStarted is returned when setup is applied twice.
	ErrAttemptAlreadyStarted = errors.New("attempt already started")
	// ErrAttemptComplete is returned when answering an attempt that already finished.
	ErrAttemptComplete = errors.New("attempt is already complete")
	// ErrAttemptIncomplete is returned when retrying the submission of an unfinished attempt.
	ErrAttemptIncomplete = errors.New("attempt is not complete yet")
	// ErrAttemptAlreadyPersisted is returned when retrying a submission that was already stored.
	ErrAttemptAlreadyPersisted = errors.New("attempt submission already stored")
	// ErrNoActiveSelection is returned when advancing without choosing an option.
	ErrNoActiveSelection = errors.New("select an option before continuing")
	// ErrOptionNotFound indicates a submitted option ID does not belong to the current question.
	ErrOptionNotFound = errors.New("option not found")

	// ErrSubmissionNotFound is returned when no submission exists for a (user, quiz) pair.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrUserNotFound is returned by the user directory for unknown ids.
	ErrUserNotFound = errors.New("user not found")
)

var setupRejections = []error{
	ErrQuizNotFound,
	ErrQuizInactive,
	ErrNotSignedIn,
	ErrNotAssigned,
	ErrRoleNotPermitted,
	ErrNoMatchingQuestions,
}

// IsSetupRejected reports whether err keeps an attempt in the setup state.
func IsSetupRejected(err error) bool {
	for _, target := range setupRejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAdvanceRejected reports whether err is a refused advance that leaves the attempt where it was.
func IsAdvanceRejected(err error) bool {
	return errors.Is(err, ErrNoActiveSelection)
}
