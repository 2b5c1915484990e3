package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	maxImageSize  = 2 << 20
	productImages = "uploads/products"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// imageError is a client mistake in the uploaded image.
type imageError struct {
	msg string
}

func (e imageError) Error() string {
	return e.msg
}

// Uploads stores product images below a public directory served at /public.
type Uploads struct {
	root string
}

func NewUploads(publicDir string) *Uploads {
	return &Uploads{root: filepath.Clean(publicDir)}
}

func isUploadPath(relPath string) bool {
	return strings.HasPrefix(strings.TrimPrefix(strings.TrimSpace(relPath), "/"), "uploads/")
}

// saveImage checks the size and sniffed content type of file and writes it
// under uploads/products. It returns the path relative to the public root.
func (u *Uploads) saveImage(file *multipart.FileHeader) (string, error) {
	if file.Size > maxImageSize {
		return "", imageError{msg: "image file too large (max 2MB)"}
	}

	in, err := file.Open()
	if err != nil {
		log.Printf("[UPLOAD] saveImage: failed to open upload %s: %v", file.Filename, err)
		return "", err
	}
	defer in.Close()

	mtype, err := mimetype.DetectReader(in)
	if err != nil {
		return "", err
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", imageError{msg: fmt.Sprintf("unsupported image type: %s", mtype.String())}
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	dir := filepath.Join(u.root, filepath.FromSlash(productImages))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] saveImage: failed to create directory %s: %v", dir, err)
		return "", err
	}

	filename := uuid.NewString() + mtype.Extension()
	fullPath := filepath.Join(dir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] saveImage: failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(in, maxImageSize+1)); err != nil {
		log.Printf("[UPLOAD] saveImage: failed to save file %s: %v", fullPath, err)
		_ = os.Remove(fullPath)
		return "", err
	}

	log.Printf("[UPLOAD] saveImage: stored %s (%s)", fullPath, mtype.String())
	return path.Join(productImages, filename), nil
}

// safeDeleteUpload removes an uploaded file, refusing anything outside the
// uploads directory.
func (u *Uploads) safeDeleteUpload(relPath string) error {
	trimmed := strings.TrimSpace(relPath)
	if trimmed == "" {
		return nil
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	cleanRel = strings.TrimPrefix(cleanRel, "/")

	if !strings.HasPrefix(cleanRel, "uploads/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", relPath)
	}

	cleanBase := u.root
	cleanTarget := filepath.Clean(filepath.Join(cleanBase, filepath.FromSlash(cleanRel)))
	if cleanTarget != cleanBase && !strings.HasPrefix(cleanTarget, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside public root: %s", relPath)
	}

	if err := os.Remove(cleanTarget); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// discardUpload deletes relPath when it is an upload, logging failures.
func (u *Uploads) discardUpload(route, relPath string) {
	if !isUploadPath(relPath) {
		return
	}
	if err := u.safeDeleteUpload(relPath); err != nil {
		log.Printf("[%s] [WARN] could not delete image %s: %v", route, relPath, err)
	}
}
