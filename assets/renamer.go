package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"legacy-migrator/config"
	"legacy-migrator/models"
)

var (
	ErrOutsideUploads   = errors.New("source is not under the uploads base url")
	ErrSourceUnreadable = errors.New("source file is not readable")
)

// RecordSource loads the owner record for naming.
type RecordSource interface {
	GetVideo(ctx context.Context, id int64) (*models.Video, error)
}

// AttachmentStore registers relocated files.
type AttachmentStore interface {
	Insert(ctx context.Context, a *models.Attachment) (int64, error)
}

// Renamer copies uploaded images to canonical names next to the original.
type Renamer struct {
	dir         string
	baseURL     string
	records     RecordSource
	attachments AttachmentStore
	now         func() time.Time
}

func NewRenamer(cfg config.UploadsConfig, records RecordSource, attachments AttachmentStore) *Renamer {
	return &Renamer{
		dir:         filepath.Clean(cfg.Dir),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		records:     records,
		attachments: attachments,
		now:         time.Now,
	}
}

// Relocate copies the file behind sourceURL to a name built from the owner
// record, registers it as an attachment of the owner and returns its URL.
// The source is never modified.
func (r *Renamer) Relocate(ctx context.Context, ownerID int64, sourceURL, suffix string) (string, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" || r.baseURL == "" || !strings.HasPrefix(sourceURL, r.baseURL+"/") {
		return "", ErrOutsideUploads
	}

	rel := strings.TrimLeft(strings.TrimPrefix(sourceURL, r.baseURL), "/")
	if i := strings.IndexAny(rel, "?#"); i >= 0 {
		rel = rel[:i]
	}
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "../") || rel == ".." {
		return "", ErrOutsideUploads
	}

	sourcePath := filepath.Join(r.dir, filepath.FromSlash(rel))
	info, err := os.Stat(sourcePath)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrSourceUnreadable, sourcePath)
	}

	owner, err := r.records.GetVideo(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("load owner %d: %w", ownerID, err)
	}

	originalName := path.Base(rel)
	ext := strings.TrimPrefix(path.Ext(originalName), ".")
	if ext == "" {
		ext = "jpg"
	}
	ext = strings.ToLower(ext)
	name := BuildFilename(PartsFromVideo(owner), suffix, originalName)
	name = strings.TrimSuffix(name, "."+ext) + "." + ext

	subdir := path.Dir(rel)
	if subdir == "." || subdir == "" {
		subdir = r.now().Format("2006/01")
	}
	destDir := filepath.Join(r.dir, filepath.FromSlash(subdir))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}

	unique := UniqueFilename(destDir, name)
	destPath := filepath.Join(destDir, unique)
	if err := copyFile(sourcePath, destPath); err != nil {
		return "", err
	}

	newURL := r.baseURL + "/" + path.Join(subdir, unique)
	attachment := &models.Attachment{
		ParentID: ownerID,
		URL:      newURL,
		Path:     destPath,
		MimeType: mime.TypeByExtension("." + ext),
		Title:    strings.TrimSuffix(unique, "."+ext),
	}
	if _, err := r.attachments.Insert(ctx, attachment); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("register attachment %s: %w", unique, err)
	}

	config.Logger.Debugf("relocated %s -> %s (owner=%d)", sourceURL, newURL, ownerID)
	return newURL, nil
}

// UniqueFilename returns name, or name-N.ext with the smallest N that is free in dir.
func UniqueFilename(dir, name string) string {
	if _, err := os.Stat(filepath.Join(dir, name)); errors.Is(err, os.ErrNotExist) {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := base + "-" + strconv.Itoa(i) + ext
		if _, err := os.Stat(filepath.Join(dir, candidate)); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Close()
}
