package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Framework string

const (
	FrameworkSklearn    Framework = "sklearn"
	FrameworkPytorch    Framework = "pytorch"
	FrameworkTensorflow Framework = "tensorflow"
	FrameworkONNX       Framework = "onnx"
	FrameworkOther      Framework = "other"
)

var validFrameworks = map[Framework]bool{
	FrameworkSklearn:    true,
	FrameworkPytorch:    true,
	FrameworkTensorflow: true,
	FrameworkONNX:       true,
	FrameworkOther:      true,
}

// NormalizeFramework validates the declared framework tag, defaulting to
// "other" when unspecified.
func NormalizeFramework(f string) (Framework, error) {
	if f == "" {
		return FrameworkOther, nil
	}
	fw := Framework(strings.ToLower(f))
	if !validFrameworks[fw] {
		return "", ErrUnsupportedFramework
	}
	return fw, nil
}

var allowedArtifactExts = map[string]bool{
	".pkl":    true,
	".joblib": true,
	".h5":     true,
	".pt":     true,
	".pth":    true,
	".onnx":   true,
	".pb":     true,
	".zip":    true,
}

// ValidateArtifactFilename checks the uploaded file against the serialized
// model formats the scorer can load.
func ValidateArtifactFilename(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedArtifactExts[ext] {
		return ErrInvalidArtifactType
	}
	return nil
}

// Model is an uploaded artifact record. Immutable after creation except
// for deletion.
type Model struct {
	ID         uuid.UUID     `json:"id"`
	Name       string        `json:"name"`
	Framework  Framework     `json:"framework"`
	FilePath   string        `json:"file_path"`
	UploadedBy *uuid.UUID    `json:"uploaded_by"`
	UploadedAt time.Time     `json:"uploaded_at"`
	Metadata   ModelMetadata `json:"metadata"`

	// Computed field from the uploader join; empty when the uploader
	// reference is stale.
	UploadedByEmail string `json:"uploaded_by_email,omitempty"`
}

type ModelMetadata struct {
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
}
