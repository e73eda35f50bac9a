package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sarrafbook/ledger/internal/logger"
)

// maxUploadBytes bounds CSV uploads.
const maxUploadBytes = 10 << 20

// ImportJob is the queue message of a CSV import.
type ImportJob struct {
	UserID   string `json:"user_id"`
	BlobName string `json:"blob_name"`
	Filename string `json:"filename"`
}

// HandleUpload handles POST /api/upload: the CSV is stored in blob storage
// and an import job is queued.
func (d *Dependencies) HandleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Warn("failed to parse multipart form", "error", err, "max_size_mb", maxUploadBytes>>20)
		WriteError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("failed to get file from form", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	log.Info("received file upload", "filename", header.Filename, "size_bytes", len(data))

	filename := filepath.Base(header.Filename)
	blobName := fmt.Sprintf("%s/%s-%s", userID, time.Now().UTC().Format("20060102-150405"), filename)
	container := d.Config.UploadsContainer

	if err := d.Blob.Upload(r.Context(), container, blobName, "text/csv", data); err != nil {
		log.Error("failed to upload blob", "blob_name", blobName, "container", container, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to upload blob: "+err.Error())
		return
	}

	job := ImportJob{UserID: userID, BlobName: blobName, Filename: filename}
	if err := d.Queue.EnqueueMessage(r.Context(), d.Config.ImportQueue, job); err != nil {
		log.Error("failed to enqueue message", "queue", d.Config.ImportQueue, "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue message: "+err.Error())
		return
	}
	log.Info("import job queued", "queue", d.Config.ImportQueue, "blob_name", blobName)

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":   "queued",
		"blobName": blobName,
	})
}
