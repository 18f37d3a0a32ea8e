package sync

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
)

// saveSnapshot writes the current cache contents to the configured local
// file. The snapshot is a plain JSON dataset so it stays inspectable.
func (e *Engine) saveSnapshot() error {
	if e.cfg.SnapshotPath == "" {
		return nil
	}

	data, err := json.MarshalIndent(e.cache.snapshot(), "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode cache snapshot")
	}

	dir := filepath.Dir(e.cfg.SnapshotPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create snapshot directory", goerr.V("dir", dir))
	}

	tmp := e.cfg.SnapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write snapshot", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, e.cfg.SnapshotPath); err != nil {
		return goerr.Wrap(err, "failed to replace snapshot", goerr.V("path", e.cfg.SnapshotPath))
	}

	return nil
}

func (e *Engine) loadSnapshot() (*model.Dataset, error) {
	if e.cfg.SnapshotPath == "" {
		return nil, goerr.New("no snapshot path configured")
	}

	data, err := os.ReadFile(e.cfg.SnapshotPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read snapshot", goerr.V("path", e.cfg.SnapshotPath))
	}

	var dataset model.Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, goerr.Wrap(err, "failed to decode snapshot", goerr.V("path", e.cfg.SnapshotPath))
	}

	return &dataset, nil
}
