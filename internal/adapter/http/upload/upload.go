// Package upload spools multipart image uploads to a temporary directory.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxValueSize = 1 << 20
	sniffLen     = 512
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Spooler receives multipart requests and writes file parts to disk.
type Spooler struct {
	dir         string
	maxFileSize int64
	maxFiles    int
	logger      *logger.Logger
}

func NewSpooler(cfg config.UploadConfig, log *logger.Logger) (*Spooler, error) {
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", cfg.TempDir, err)
	}
	return &Spooler{
		dir:         cfg.TempDir,
		maxFileSize: cfg.MaxFileSize,
		maxFiles:    cfg.MaxFiles,
		logger:      log.Named("Upload"),
	}, nil
}

// Form is a received multipart request. Cleanup must be called once the files
// are no longer needed.
type Form struct {
	values map[string]string
	Files  []domain.LocalFile
}

func (f *Form) Value(key string) string { return f.values[key] }

// Cleanup removes the spooled files. Safe to call more than once.
func (f *Form) Cleanup() {
	for _, file := range f.Files {
		_ = os.Remove(file.Path)
	}
	f.Files = nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsMultipart reports whether r carries a multipart body.
func IsMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// Receive reads the whole multipart body. Parts named field are stored as
// files; at most maxFiles of them are accepted. Other parts become values.
func (s *Spooler) Receive(w http.ResponseWriter, r *http.Request, field string, maxFiles int) (*Form, error) {
	if maxFiles <= 0 || maxFiles > s.maxFiles {
		maxFiles = s.maxFiles
	}
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxFiles)*s.maxFileSize+maxValueSize)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, invalid("expected a multipart/form-data body")
	}

	form := &Form{values: map[string]string{}}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			form.Cleanup()
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, invalid("request body is too large")
			}
			return nil, invalid("malformed multipart body")
		}

		if part.FileName() == "" {
			err = s.readValue(form, part)
		} else if part.FormName() != field {
			err = invalid("unexpected file field %q", part.FormName())
		} else if len(form.Files) >= maxFiles {
			err = invalid("at most %d files are allowed", maxFiles)
		} else {
			var file domain.LocalFile
			file, err = s.spool(part)
			if err == nil {
				form.Files = append(form.Files, file)
			}
		}
		part.Close()
		if err != nil {
			form.Cleanup()
			return nil, err
		}
	}
	return form, nil
}

func (s *Spooler) readValue(form *Form, part *multipart.Part) error {
	b, err := io.ReadAll(io.LimitReader(part, maxValueSize+1))
	if err != nil {
		return invalid("malformed multipart body")
	}
	if len(b) > maxValueSize {
		return invalid("field %q is too large", part.FormName())
	}
	form.values[part.FormName()] = string(b)
	return nil
}

// spool writes one file part to disk after checking its real content type.
func (s *Spooler) spool(part *multipart.Part) (domain.LocalFile, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(part, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return domain.LocalFile{}, invalid("could not read %q", part.FileName())
	}
	head = head[:n]
	if n == 0 {
		return domain.LocalFile{}, invalid("file %q is empty", part.FileName())
	}
	contentType := http.DetectContentType(head)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return domain.LocalFile{}, invalid("file %q is not a supported image (jpeg, png, webp, gif)", part.FileName())
	}

	path := filepath.Join(s.dir, uuid.NewString()+ext)
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return domain.LocalFile{}, fmt.Errorf("create temp file: %w", err)
	}
	size, err := io.Copy(out, io.LimitReader(io.MultiReader(bytes.NewReader(head), part), s.maxFileSize+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.LocalFile{}, invalid("request body is too large")
		}
		return domain.LocalFile{}, fmt.Errorf("write temp file: %w", err)
	}
	if size > s.maxFileSize {
		_ = os.Remove(path)
		return domain.LocalFile{}, invalid("file %q exceeds %d bytes", part.FileName(), s.maxFileSize)
	}

	return domain.LocalFile{
		Path:        path,
		Filename:    filepath.Base(part.FileName()),
		ContentType: contentType,
		Size:        size,
	}, nil
}

// Sweep deletes spooled files older than ttl. Files left behind by crashed
// requests are removed this way.
func (s *Spooler) Sweep(ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read upload dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < ttl {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove stale upload", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
