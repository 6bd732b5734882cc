package handlers

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dyike/DepotGo/config"
	"github.com/dyike/DepotGo/internal/api"
	"github.com/dyike/DepotGo/internal/storage"
	"github.com/dyike/DepotGo/internal/view"
)

// UploadOptions selects the upload variant.
type UploadOptions struct {
	ShowProgressMessage bool
	ResponseFormat      api.ResponseFormat
}

func UploadOptionsFromConfig(cfg config.UploadConfig) UploadOptions {
	return UploadOptions{
		ShowProgressMessage: cfg.ShowProgressMessage,
		ResponseFormat:      api.ParseResponseFormat(cfg.ResponseFormat),
	}
}

// UploadSubmitter sends starship reports and shows the download link.
type UploadSubmitter struct {
	uploader Uploader
	display  view.Display
	opts     UploadOptions
	logger   *zap.Logger
	journal  storage.Journal
}

func NewUploadSubmitter(uploader Uploader, display view.Display, opts UploadOptions, logger *zap.Logger, journal storage.Journal) *UploadSubmitter {
	if opts.ResponseFormat == "" {
		opts.ResponseFormat = api.FormatText
	}
	return &UploadSubmitter{
		uploader: uploader,
		display:  display,
		opts:     opts,
		logger:   orNop(logger),
		journal:  orDiscard(journal),
	}
}

// Submit uploads the report. The file is sent as is, without type or size
// checks. On failure the form stays visible so the user can retry.
func (s *UploadSubmitter) Submit(ctx context.Context, req api.UploadRequest) error {
	if s.opts.ShowProgressMessage {
		s.display.SetText(view.IDUploadInstruct, view.ProgressMessage())
	}

	link, err := s.uploader.Upload(ctx, req, s.opts.ResponseFormat)
	if err != nil {
		s.logger.Error("Error uploading file", zap.String("file", req.FileName), zap.Error(err))
		s.display.Alert(view.UploadFailure())
		s.display.SetVisible(view.IDUploadForm, true)
		s.record(req.FileName, outcomeOf(err), err.Error())
		return err
	}

	s.display.SetLink(view.IDUploadInstruct, view.UploadLinkPrefix(), view.UploadLink(link))
	s.record(req.FileName, storage.OutcomeOK, link)
	return nil
}

func (s *UploadSubmitter) record(name, outcome, detail string) {
	s.journal.Record(storage.Interaction{
		Kind:    storage.KindUpload,
		Subject: name,
		Target:  view.IDUploadInstruct,
		Outcome: outcome,
		Detail:  detail,
	})
}

// OpenFile reads a local file into an UploadRequest.
func OpenFile(path string) (api.UploadRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.UploadRequest{}, fmt.Errorf("read %s: %w", path, err)
	}
	return api.UploadRequest{
		FileName: filepath.Base(path),
		Content:  bytes.NewReader(data),
	}, nil
}
