package remote

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"rubox/internal/model"
)

// ListDirectory returns the immediate children of subdir. A missing folder is
// created on the spot and reported as empty, so a fresh remote root heals
// itself on the first pass.
func (c *Client) ListDirectory(ctx context.Context, subdir string) ([]model.RemoteEntry, error) {
	items, err := c.list(ctx, subdir)
	if errors.Is(err, ErrNotFound) {
		c.log.Info("remote folder missing, creating it", zap.String("path", c.RemotePath(subdir)))
		if err := c.CreateFolder(ctx, subdir); err != nil {
			c.log.Warn("could not create missing remote folder", zap.String("path", c.RemotePath(subdir)), zap.Error(err))
		}
		return nil, nil
	}
	if err != nil {
		c.logFailure("list", c.RemotePath(subdir), err)
		return nil, err
	}

	entries := make([]model.RemoteEntry, 0, len(items))
	for _, item := range items {
		modified, err := parseModified(item.Modified)
		if err != nil {
			c.log.Warn("unparsable modification time",
				zap.String("name", item.Name),
				zap.String("modified", item.Modified),
				zap.Error(err))
		}

		entries = append(entries, model.RemoteEntry{
			Name:       item.Name,
			Path:       item.Path,
			ModifiedAt: modified,
			Kind:       model.ClassifyName(item.Name),
		})
	}

	return entries, nil
}

// list pages through a folder listing.
func (c *Client) list(ctx context.Context, key string) ([]resource, error) {
	remotePath := c.RemotePath(key)

	var items []resource
	for offset := 0; ; {
		var info resourceInfo
		resp, err := c.withContext(ctx).
			SetQueryParam("path", remotePath).
			SetQueryParam("limit", strconv.Itoa(listPageLimit)).
			SetQueryParam("offset", strconv.Itoa(offset)).
			SetQueryParam("sort", listSortOrder).
			SetSuccessResult(&info).
			Get(resourcesEndpoint)
		if err := check(resp, err, "list", remotePath, http.StatusOK); err != nil {
			return nil, err
		}

		if info.Embedded == nil {
			return items, nil
		}

		items = append(items, info.Embedded.Items...)
		offset += len(info.Embedded.Items)
		if len(info.Embedded.Items) < listPageLimit || offset >= info.Embedded.Total {
			return items, nil
		}
	}
}
