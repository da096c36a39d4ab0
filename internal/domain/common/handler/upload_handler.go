package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"newsroom_api/internal/pkg/uploader"
	"newsroom_api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 单个文件上限 5MB
	maxFileSize = 5 << 20
	// 单次最多上传文件数
	maxFiles = 10
	// 并发上传数
	uploadConcurrency = 5
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type UploadHandler struct {
	uploader uploader.Uploader
	log      *zap.Logger
}

// NewUploadHandler uploader 为 nil 时接口返回 503
func NewUploadHandler(u uploader.Uploader, log *zap.Logger) *UploadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UploadHandler{uploader: u, log: log}
}

// UploadFiles 批量上传新闻图片，返回的 URL 与提交顺序一致
func (h *UploadHandler) UploadFiles(c *gin.Context) {
	if h.uploader == nil {
		response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal, "Uploader not configured")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "No files uploaded")
		return
	}
	if len(files) > maxFiles {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Too many files")
		return
	}
	for _, f := range files {
		if err := checkFile(f); err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
			return
		}
	}

	urls, err := h.uploadAll(files)
	if err != nil {
		h.log.Error("upload failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Upload failed")
		return
	}

	response.Success(c, urls)
}

func (h *UploadHandler) uploadAll(files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, len(files))

	var wg sync.WaitGroup
	var errOnce sync.Once
	var uploadErr error
	sem := make(chan struct{}, uploadConcurrency)

	for i, file := range files {
		wg.Add(1)
		go func(index int, f *multipart.FileHeader) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			url, err := h.uploadOne(f)
			if err != nil {
				errOnce.Do(func() { uploadErr = err })
				return
			}
			// 按索引赋值，保证顺序
			urls[index] = url
		}(i, file)
	}

	wg.Wait()
	if uploadErr != nil {
		return nil, uploadErr
	}
	return urls, nil
}

func (h *UploadHandler) uploadOne(f *multipart.FileHeader) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return h.uploader.Upload(f.Filename, src)
}

func checkFile(f *multipart.FileHeader) error {
	if !allowedExt[strings.ToLower(filepath.Ext(f.Filename))] {
		return errors.New("unsupported file type: " + f.Filename)
	}
	if f.Size > maxFileSize {
		return errors.New("file too large: " + f.Filename)
	}
	return nil
}
