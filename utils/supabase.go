package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	storage "github.com/supabase-community/storage-go"
)

const mediaBucket = "onboard_media"

// UploadToSupabase pushes a file into the media bucket and returns its
// public URL. Accepts either a *multipart.FileHeader or raw []byte.
func UploadToSupabase(file interface{}, filename string, fileID string, folder string, contentType string) (string, error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")

	storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)

	var reader io.Reader
	var ext string

	if fh, ok := file.(*multipart.FileHeader); ok {
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		reader = f
		ext = filepath.Ext(fh.Filename)
		if contentType == "" {
			contentType = fh.Header.Get("Content-Type")
		}
		if _, err := f.Seek(0, 0); err != nil {
			return "", err
		}
	}

	if data, ok := file.([]byte); ok {
		reader = bytes.NewReader(data)
		ext = filepath.Ext(filename)
	}

	objectPath := fmt.Sprintf("%s%s", fileID, ext)
	if folder != "" {
		objectPath = fmt.Sprintf("%s/%s%s", folder, fileID, ext)
	}

	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}

	if _, err := storageClient.UploadFile(mediaBucket, objectPath, reader, options); err != nil {
		return "", err
	}

	publicURL := storageClient.GetPublicUrl(mediaBucket, objectPath)
	return publicURL.SignedURL, nil
}
