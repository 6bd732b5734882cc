package storage

import (
	"errors"
	"strings"

	"github.com/dyike/DepotGo/config"
)

// ErrDataDirNotConfigured indicates config.DataDir is empty.
var ErrDataDirNotConfigured = errors.New("data_dir is not configured")

// OpenConfigured opens the journal under cfg.DataDir.
func OpenConfigured(cfg *config.Config) (*Store, error) {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return nil, ErrDataDirNotConfigured
	}
	return Open(cfg.HistoryPath())
}
