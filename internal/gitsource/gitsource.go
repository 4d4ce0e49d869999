// Package gitsource keeps a local notes checkout in step with its remote.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
)

// Sync clones url into localPath if nothing is there yet, or pulls the
// latest changes if a checkout exists. Being already up to date is success.
func Sync(ctx context.Context, url, localPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("Cloning notes repository", "url", url, "path", localPath)
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:   url,
			Depth: 1,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", url, err)
		}
		logger.Info("Clone successful", "path", localPath)

	case err == nil:
		logger.Info("Pulling notes repository", "path", localPath)
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}

		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}

		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			logger.Info("Notes repository already up to date", "path", localPath)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
		logger.Info("Pull successful", "path", localPath)

	default:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}

	return nil
}
