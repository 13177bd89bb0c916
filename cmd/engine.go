package cmd

import (
	"context"

	"github.com/spf13/afero"

	"rubox/internal/auth"
	"rubox/internal/config"
	"rubox/internal/reconcile"
	"rubox/internal/remote"
)

func authStore() (*auth.Store, error) {
	dir := configDir
	if dir == "" {
		d, err := config.Dir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	return auth.NewStore(dir), nil
}

func newEngine(ctx context.Context, recorder reconcile.Recorder) (*reconcile.Engine, *remote.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	store, err := authStore()
	if err != nil {
		return nil, nil, err
	}

	ts, err := auth.TokenSource(ctx, cfg.APIKey, store)
	if err != nil {
		return nil, nil, err
	}

	fs := afero.NewOsFs()
	client := remote.NewClient(remote.Options{
		BaseURL:     cfg.APIBaseURL,
		RemoteRoot:  cfg.RemoteRoot,
		TokenSource: ts,
		Timeout:     cfg.RequestTimeout,
		Fs:          fs,
		Logger:      log,
	})

	engine := reconcile.New(reconcile.Options{
		Fs:        fs,
		Store:     client,
		LocalRoot: cfg.LocalRoot,
		Interval:  cfg.Interval(),
		Ignore:    cfg.IgnoreList,
		Recorder:  recorder,
		Logger:    log,
	})

	return engine, client, nil
}
