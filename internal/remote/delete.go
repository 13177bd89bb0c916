package remote

import (
	"context"
	"net/http"
	"path"

	"go.uber.org/zap"
)

// Delete permanently removes <root>/<subdir>/<name>.
func (c *Client) Delete(ctx context.Context, name, subdir string) error {
	key := joinKey(subdir, name)
	if err := c.remove(ctx, key); err != nil {
		c.logFailure("delete", c.RemotePath(key), err)
		return err
	}

	c.log.Debug("deleted", zap.String("remote", c.RemotePath(key)))

	return nil
}

func (c *Client) remove(ctx context.Context, key string) error {
	remotePath := c.RemotePath(key)

	resp, err := c.withContext(ctx).
		SetQueryParam("path", remotePath).
		SetQueryParam("permanently", "true").
		Delete(resourcesEndpoint)

	return check(resp, err, "delete", remotePath, http.StatusNoContent)
}

func joinKey(subdir, name string) string {
	return path.Join(subdir, name)
}
