package document

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"crm-backend/internal/apperr"
	"crm-backend/internal/filestore"
	"crm-backend/internal/models"
	"crm-backend/internal/paging"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	MaxFiles    = 5
	MaxFileSize = 10 << 20
	KeyPrefix   = "services/"
)

// allowed maps accepted extensions to their MIME types.
var allowed = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	".jpeg": {"image/jpeg", "image/jpg", "image/pjpeg"},
	".jpg":  {"image/jpeg", "image/jpg", "image/pjpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".xls":  {"application/vnd.ms-excel"},
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
}

type Store interface {
	ListByService(ctx context.Context, serviceID uint, p paging.Params) ([]models.ServicesDocument, int64, error)
	FindByID(ctx context.Context, id uint) (*models.ServicesDocument, error)
	Create(ctx context.Context, d *models.ServicesDocument) error
	Delete(ctx context.Context, id uint) error
}

type ItemFinder interface {
	FindItem(ctx context.Context, id uint) (*models.ClientServiceItem, error)
}

// Counter is notified of every stored document.
type Counter interface {
	DocumentUploaded()
}

// FileError describes a file that could not be stored.
type FileError struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

type Service struct {
	docs    Store
	items   ItemFinder
	files   filestore.FileStore
	counter Counter
	logger  *log.Logger
}

func NewService(docs Store, items ItemFinder, files filestore.FileStore, counter Counter, logger *log.Logger) *Service {
	return &Service{docs: docs, items: items, files: files, counter: counter, logger: logger}
}

// CheckFiles rejects the whole request before anything is stored.
func CheckFiles(files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return apperr.Validation("No files uploaded")
	}
	if len(files) > MaxFiles {
		return apperr.Validationf("Too many files, at most %d per upload", MaxFiles)
	}
	for _, fh := range files {
		if fh.Size > MaxFileSize {
			return apperr.Validationf("File %s exceeds the 10MB limit", fh.Filename)
		}
		if !Allowed(fh.Filename, fh.Header.Get("Content-Type")) {
			return apperr.Validationf("File type not allowed: %s", fh.Filename)
		}
	}
	return nil
}

// Allowed reports whether the extension is on the allow-list and the declared
// MIME type, when there is one, matches it.
func Allowed(name, mimeType string) bool {
	types, ok := allowed[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return false
	}
	mimeType = strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	if mimeType == "" || mimeType == "application/octet-stream" {
		return true
	}
	for _, t := range types {
		if t == mimeType {
			return true
		}
	}
	return false
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeName keeps a file name safe for use in an object key.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	if name == "" {
		name = "file"
	}
	if len(name) > 120 {
		ext := filepath.Ext(name)
		name = name[:120-len(ext)] + ext
	}
	return name
}

// ObjectKey builds services/<unix-ms>-<random>-<sanitized name>.
func ObjectKey(name string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s%d-%s-%s", KeyPrefix, now.UnixMilli(), random, SanitizeName(name))
}

// Upload stores each file in turn. A failing file is reported in the
// returned errors and does not stop the rest.
func (s *Service) Upload(ctx context.Context, serviceID uint, user *models.User, files []*multipart.FileHeader) ([]models.ServicesDocument, []FileError, error) {
	if err := CheckFiles(files); err != nil {
		return nil, nil, err
	}
	if _, err := s.items.FindItem(ctx, serviceID); err != nil {
		return nil, nil, err
	}

	docs := make([]models.ServicesDocument, 0, len(files))
	var failed []FileError
	for _, fh := range files {
		doc, err := s.store(ctx, serviceID, user, fh)
		if err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"service_id": serviceID,
				"file":       fh.Filename,
			}).Warn("document upload failed")
			failed = append(failed, FileError{FileName: fh.Filename, Error: userMessage(err)})
			continue
		}
		docs = append(docs, *doc)
		if s.counter != nil {
			s.counter.DocumentUploaded()
		}
	}
	return docs, failed, nil
}

func (s *Service) store(ctx context.Context, serviceID uint, user *models.User, fh *multipart.FileHeader) (*models.ServicesDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	key := ObjectKey(fh.Filename, time.Now())
	url, err := s.files.Put(ctx, key, f, fh.Size, contentType)
	if err != nil {
		return nil, errors.Wrap(err, "store file")
	}

	doc := models.ServicesDocument{
		ServiceID:   serviceID,
		DocumentURL: url,
		FileKey:     key,
		FileName:    fh.Filename,
		FileSize:    fh.Size,
		MimeType:    contentType,
		UserID:      user.ID,
		CreatedBy:   user.Name,
	}
	if err := s.docs.Create(ctx, &doc); err != nil {
		// keep storage in step with the table
		if derr := s.files.Delete(ctx, key); derr != nil {
			s.logger.WithError(derr).WithField("key", key).Warn("could not remove orphaned object")
		}
		return nil, err
	}
	return &doc, nil
}

// Delete removes the row even when the stored file cannot be removed; in
// that case the returned warning is non-empty.
func (s *Service) Delete(ctx context.Context, id uint) (*models.ServicesDocument, string, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var warning string
	if err := s.removeFile(ctx, doc); err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			warning = "Document record deleted, but the stored file was already missing"
		} else {
			warning = "Document record deleted, but the stored file could not be removed"
		}
		s.logger.WithError(err).WithField("document_id", id).Warn("storage delete failed")
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return nil, "", err
	}
	return doc, warning, nil
}

// RemoveFiles deletes stored files of documents whose rows are already gone.
func (s *Service) RemoveFiles(ctx context.Context, docs []models.ServicesDocument) {
	for i := range docs {
		if err := s.removeFile(ctx, &docs[i]); err != nil && !errors.Is(err, filestore.ErrNotFound) {
			s.logger.WithError(err).WithField("document_id", docs[i].ID).Warn("storage delete failed")
		}
	}
}

func (s *Service) removeFile(ctx context.Context, doc *models.ServicesDocument) error {
	key := doc.FileKey
	if key == "" {
		key = filestore.KeyFromURL(doc.DocumentURL, KeyPrefix)
	}
	if key == "" {
		return errors.Errorf("no object key for document %d", doc.ID)
	}
	return s.files.Delete(ctx, key)
}

func userMessage(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		return ae.Message
	}
	return "Upload failed"
}
