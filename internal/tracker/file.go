package tracker

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/boardcfg/internal/models"
)

// FileSource serves tracker metadata from a YAML fixture file, for offline
// runs. The file is re-read on every call.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by the YAML file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) load() (*models.TrackerMetadata, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read tracker fixture: %w", err)
	}
	var meta models.TrackerMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse tracker fixture %s: %w", f.path, err)
	}
	return &meta, nil
}

func (f *FileSource) ListIssueTypes(_ context.Context) ([]models.TrackerIssueType, error) {
	meta, err := f.load()
	if err != nil {
		return nil, err
	}
	return meta.IssueTypes, nil
}

func (f *FileSource) ListStatusesByIssueType(_ context.Context) ([]models.IssueTypeStatuses, error) {
	meta, err := f.load()
	if err != nil {
		return nil, err
	}
	for i := range meta.Statuses {
		for k := range meta.Statuses[i].Statuses {
			st := &meta.Statuses[i].Statuses[k]
			st.Category = ParseCategory(string(st.Category))
		}
	}
	return meta.Statuses, nil
}

func (f *FileSource) ListLinkTypes(_ context.Context) ([]models.TrackerLinkType, error) {
	meta, err := f.load()
	if err != nil {
		return nil, err
	}
	return meta.LinkTypes, nil
}
