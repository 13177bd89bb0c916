package reconcile

import (
	"fmt"
	"slices"

	"github.com/spf13/afero"

	"rubox/internal/model"
)

type localLevel struct {
	files []model.LocalEntry
	// folders holds every subdirectory, whatever its name.
	folders []string
	// skipped holds files the remote naming rule cannot represent.
	skipped []string
}

func readLocalLevel(fs afero.Fs, dir string) (localLevel, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return localLevel{}, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var level localLevel
	for _, info := range infos {
		switch {
		case info.IsDir():
			level.folders = append(level.folders, info.Name())
		case !info.Mode().IsRegular():
			level.skipped = append(level.skipped, info.Name())
		case model.ClassifyName(info.Name()) == model.KindFile:
			level.files = append(level.files, model.LocalEntry{Name: info.Name(), ModifiedAt: info.ModTime()})
		case model.ClassifyName(info.Name()) == model.KindFolder:
			level.skipped = append(level.skipped, info.Name())
		}
	}
	slices.Sort(level.folders)

	return level, nil
}
