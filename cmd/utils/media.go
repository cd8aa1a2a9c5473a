package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
    MaxMediaSize = 10 << 20 // 10 MB
    MediaPath    = "uploads/media"
)

// SaveMedia saves an uploaded image or clip and returns its URL path.
func SaveMedia(file multipart.File, header *multipart.FileHeader) (string, string, error) {
    if header.Size > MaxMediaSize {
        return "", "", fmt.Errorf("file size exceeds maximum limit of %d MB", MaxMediaSize/(1<<20))
    }

    ext := strings.ToLower(filepath.Ext(header.Filename))
    mediaType, ok := mediaTypes[ext]
    if !ok {
        return "", "", fmt.Errorf("invalid file type: %s", ext)
    }

    if err := os.MkdirAll(MediaPath, 0755); err != nil {
        return "", "", fmt.Errorf("failed to create upload directory: %v", err)
    }

    filename := fmt.Sprintf("%s-%s%s",
        time.Now().Format("20060102"),
        uuid.New().String(),
        ext,
    )
    filePath := filepath.Join(MediaPath, filename)

    dst, err := os.Create(filePath)
    if err != nil {
        return "", "", fmt.Errorf("failed to create file: %v", err)
    }
    defer dst.Close()

    if _, err := io.Copy(dst, file); err != nil {
        return "", "", fmt.Errorf("failed to save file: %v", err)
    }

    return fmt.Sprintf("/media/%s", filename), mediaType, nil
}

var mediaTypes = map[string]string{
    ".jpg":  "image",
    ".jpeg": "image",
    ".png":  "image",
    ".gif":  "image",
    ".webp": "image",
    ".mp4":  "video",
    ".mov":  "video",
}

func DeleteMedia(mediaURL string) error {
    filename := filepath.Base(mediaURL)
    filePath := filepath.Join(MediaPath, filename)

    if _, err := os.Stat(filePath); os.IsNotExist(err) {
        return nil
    }
    return os.Remove(filePath)
}
