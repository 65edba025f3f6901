package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/batchblast/batchblast/internal/domain/model"
	apperrors "github.com/batchblast/batchblast/internal/errors"
)

// ErrNoSession is returned when a locator is requested before a folder id was assigned.
var ErrNoSession = apperrors.Precondition("no session identifier has been assigned yet")

// DownloadLocator maps (artifact, folder id) to retrieval URLs on the backend.
// It holds no state beyond the base URL.
type DownloadLocator struct {
	base string
}

// NewDownloadLocator returns a locator rooted at baseURL.
func NewDownloadLocator(baseURL string) DownloadLocator {
	return DownloadLocator{base: strings.TrimRight(baseURL, "/")}
}

// Locate returns the attachment download URL for artifact.
func (l DownloadLocator) Locate(artifact model.ArtifactType, sessionID string) (model.Locator, error) {
	return l.build("download", artifact, sessionID)
}

// LocatePreview returns the inline viewer URL. Only report documents can be previewed.
func (l DownloadLocator) LocatePreview(artifact model.ArtifactType, sessionID string) (model.Locator, error) {
	if artifact.Valid() && !artifact.Previewable() {
		return model.Locator{}, apperrors.Validationf("artifact %s has no inline preview", artifact)
	}
	loc, err := l.build("preview", artifact, sessionID)
	loc.Inline = err == nil
	return loc, err
}

// All returns download locators for every artifact and preview locators for the previewable ones.
func (l DownloadLocator) All(sessionID string) (downloads, previews []model.Locator, err error) {
	for _, a := range model.AllArtifacts() {
		loc, err := l.Locate(a, sessionID)
		if err != nil {
			return nil, nil, err
		}
		downloads = append(downloads, loc)
	}
	for _, a := range model.PreviewableArtifacts() {
		loc, err := l.LocatePreview(a, sessionID)
		if err != nil {
			return nil, nil, err
		}
		previews = append(previews, loc)
	}
	return downloads, previews, nil
}

func (l DownloadLocator) build(endpoint string, artifact model.ArtifactType, sessionID string) (model.Locator, error) {
	if !artifact.Valid() {
		return model.Locator{}, apperrors.Validationf("unknown artifact type %d", int(artifact))
	}
	if strings.TrimSpace(sessionID) == "" {
		return model.Locator{}, ErrNoSession
	}
	q := url.Values{}
	q.Set("type", strconv.Itoa(int(artifact)))
	q.Set("folderid", sessionID)
	return model.Locator{
		Artifact: artifact,
		URL:      l.base + "/" + endpoint + "?" + q.Encode(),
	}, nil
}
