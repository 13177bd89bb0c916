package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
)

// CreateFolder creates <root>/<subdir>. The parent must already exist.
func (c *Client) CreateFolder(ctx context.Context, subdir string) error {
	remotePath := c.RemotePath(subdir)

	resp, err := c.withContext(ctx).
		SetQueryParam("path", remotePath).
		Put(resourcesEndpoint)
	if err := check(resp, err, "create folder", remotePath, http.StatusCreated); err != nil {
		c.logFailure("create folder", remotePath, err)
		return err
	}

	c.log.Info("created remote folder", zap.String("path", remotePath))

	return nil
}

// DeleteFolderSubtree removes a remote folder and everything below it. The
// API only deletes empty folders, so the tree is emptied bottom-up with an
// explicit work list. Every path is removed at most once; listings that still
// show already deleted children are treated as empty. The walk gives up after
// the configured number of steps.
func (c *Client) DeleteFolderSubtree(ctx context.Context, key string) error {
	deleted := mapset.NewThreadUnsafeSet[string]()
	stack := []string{key}

	for steps := 0; len(stack) > 0; steps++ {
		if steps >= c.maxSteps {
			err := fmt.Errorf("%w: %s after %d steps", ErrSubtreeNotEmptied, c.RemotePath(key), steps)
			c.logFailure("delete folder subtree", c.RemotePath(key), err)
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if deleted.Contains(current) {
			continue
		}

		items, err := c.list(ctx, current)
		if errors.Is(err, ErrNotFound) {
			deleted.Add(current)
			continue
		}
		if err != nil {
			c.logFailure("delete folder subtree", c.RemotePath(current), err)
			return err
		}

		var folders []string
		pending := 0
		for _, item := range items {
			child := path.Join(current, item.Name)
			if deleted.Contains(child) {
				continue
			}
			pending++

			if item.Type == typeDir {
				folders = append(folders, child)
				continue
			}
			if err := c.remove(ctx, child); err != nil {
				c.logFailure("delete folder subtree", c.RemotePath(child), err)
				return err
			}
			deleted.Add(child)
		}

		if pending == 0 {
			if err := c.remove(ctx, current); err != nil && !errors.Is(err, ErrNotFound) {
				c.logFailure("delete folder subtree", c.RemotePath(current), err)
				return err
			}
			deleted.Add(current)
			c.log.Debug("deleted remote folder", zap.String("path", c.RemotePath(current)))
			continue
		}

		// Revisit current once its sub-folders are gone.
		stack = append(stack, current)
		stack = append(stack, folders...)
	}

	c.log.Info("deleted remote folder subtree", zap.String("path", c.RemotePath(key)), zap.Int("paths", deleted.Cardinality()))

	return nil
}
