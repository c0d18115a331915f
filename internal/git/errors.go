package git

import (
	"git.home.luguber.info/inful/lastupdated/internal/foundation/errors"
)

// GitError simplifies creating a git-scoped ClassifiedError.
func GitError(message string) *errors.ErrorBuilder {
	return errors.NewError(errors.CategoryGit, message)
}

// ClassifyOpenError turns a failed repository open into the fatal
// RepositoryUnavailable condition: nothing can be resolved without a readable
// commit graph, so the whole run stops.
func ClassifyOpenError(err error, dir string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}
	return GitError("repository unavailable").
		Fatal().
		WithCause(err).
		WithContext("dir", dir).
		Build()
}
