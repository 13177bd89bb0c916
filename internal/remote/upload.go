package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Upload copies the local file to <root>/<subdir>/<name>, overwriting any
// existing object. When the parent folder is missing it is created and the
// upload is retried exactly once.
func (c *Client) Upload(ctx context.Context, localPath, name, subdir string) error {
	f, err := c.fs.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLocalFileUnreadable, err)
	}
	defer func(f afero.File) {
		_ = f.Close()
	}(f)

	key := joinKey(subdir, name)

	href, err := c.uploadLink(ctx, key)
	if errors.Is(err, ErrConflict) {
		c.log.Info("remote parent folder missing, creating it", zap.String("path", c.RemotePath(subdir)))
		if err := c.CreateFolder(ctx, subdir); err != nil {
			return fmt.Errorf("failed to create parent folder for %s: %w", c.RemotePath(key), err)
		}
		href, err = c.uploadLink(ctx, key)
	}
	if err != nil {
		c.logFailure("upload link", c.RemotePath(key), err)
		return err
	}

	resp, err := c.transfer.R().
		SetContext(ctx).
		SetBody(f).
		Put(href)
	if err := check(resp, err, "upload", c.RemotePath(key), http.StatusCreated); err != nil {
		c.logFailure("upload", c.RemotePath(key), err)
		return err
	}

	c.log.Debug("uploaded", zap.String("local", localPath), zap.String("remote", c.RemotePath(key)))

	return nil
}

func (c *Client) uploadLink(ctx context.Context, key string) (string, error) {
	remotePath := c.RemotePath(key)

	var l link
	resp, err := c.withContext(ctx).
		SetQueryParam("path", remotePath).
		SetQueryParam("overwrite", "true").
		SetSuccessResult(&l).
		Get(uploadEndpoint)
	if err := check(resp, err, "upload link", remotePath, http.StatusOK); err != nil {
		return "", err
	}

	if l.Href == "" {
		return "", fmt.Errorf("upload link for %s has no href", remotePath)
	}

	return l.Href, nil
}
