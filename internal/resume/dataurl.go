// Package resume handles the resume attached to an interview record: the
// inline data URL form kept on the record, text extraction and the object
// storage archive.
package resume

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/muhammadolammi/interviewmate/internal/interview"
)

const (
	MimePlain = "text/plain"
	MimePDF   = "application/pdf"
	MimeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var ErrNotDataURL = errors.New("resume data is not a base64 data url")

// DetectMime picks the mime type of an uploaded file from its declared
// type, its extension and finally its content.
func DetectMime(name, declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDocx
	case ".txt":
		return MimePlain
	}
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		mt, _, _ := mime.ParseMediaType(byExt)
		return mt
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

// FromFile encodes a whole file inline. No size limit is applied.
func FromFile(name string, data []byte, mimeType string) interview.Resume {
	return interview.Resume{
		FileName: filepath.Base(name),
		FileData: fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
	}
}

// Decode returns the mime type and raw bytes of an inline resume.
func Decode(r interview.Resume) (string, []byte, error) {
	rest, ok := strings.CutPrefix(r.FileData, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, ErrNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode resume payload: %w", err)
	}
	if mimeType == "" {
		mimeType = DetectMime(r.FileName, "", data)
	}
	return mimeType, data, nil
}
