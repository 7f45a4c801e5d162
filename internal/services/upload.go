package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/logger"
)

const (
	MaxImageSize       = 5 << 20
	MaxImagesPerUpload = 10
)

var allowedImageTypes = []string{"image/jpeg", "image/png"}

// Uploads stores validated images on local disk.
type Uploads interface {
	SaveImage(file *multipart.FileHeader) (string, error)
	Remove(name string)
}

type diskUploads struct {
	dir string
	log logger.ILogger
}

func NewUploads(dir string, log logger.ILogger) (Uploads, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &diskUploads{dir: dir, log: log}, nil
}

// SaveImage sniffs the file content, rejects anything but jpeg or png over
// the size limit, and stores it under a unique name which it returns.
func (u *diskUploads) SaveImage(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", apperrors.BadRequest("No image uploaded")
	}
	if file.Size > MaxImageSize {
		return "", apperrors.BadRequest("Image exceeds the 5 MB limit")
	}

	src, err := file.Open()
	if err != nil {
		return "", apperrors.Internal(err)
	}
	defer src.Close()

	head := make([]byte, 3072)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apperrors.Internal(err)
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		u.log.Warning("rejected upload", logger.String("filename", file.Filename), logger.String("mime", mtype.String()))
		return "", apperrors.BadRequest("Invalid image type, allowed types are jpeg, png")
	}

	name := uuid.NewString() + "-" + sanitizeFilename(file.Filename)
	path := filepath.Join(u.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", apperrors.Internal(err)
	}

	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), io.LimitReader(src, MaxImageSize)))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > MaxImageSize {
		err = apperrors.BadRequest("Image exceeds the 5 MB limit")
	}
	if err != nil {
		_ = os.Remove(path)
		if _, ok := apperrors.As(err); ok {
			return "", err
		}
		return "", apperrors.Internal(err)
	}

	return name, nil
}

// Remove deletes a previously stored file. Missing files are ignored.
func (u *diskUploads) Remove(name string) {
	if name == "" {
		return
	}
	path := filepath.Join(u.dir, filepath.Base(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		u.log.Warning("failed to remove upload", logger.String("file", name), logger.Error(err))
	}
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		return "image"
	}
	return name
}
