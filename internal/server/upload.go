package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// uploadReq holds the fields read from the POST /upload body.
type uploadReq struct {
	FileID      string
	FileData    string
	FileName    string // advisory, never used for the storage path
	ContentType string
}

var (
	errMissingFields = errors.New("missing required fields")
	errFieldType     = errors.New("fileData and contentType must be strings")
)

// uploadResp is returned for every upload outcome; the path fields are only
// set on success.
type uploadResp struct {
	Success  bool   `json:"success"`
	FilePath string `json:"filePath,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

var dataURIPrefix = regexp.MustCompile(`^data:([A-Za-z+/-]+);base64,`)

// handleUpload implements POST /upload. The body is buffered in full before
// parsing; unless MaxUploadBytes is set there is no size limit.
//
// Status mapping: 400 for missing fields (including any JSON body that is not
// an object), 500 for invalid JSON, null, non-string fileData or contentType
// and storage failures, 413 when a configured cap is exceeded.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rid := RequestIDFromContext(r.Context())

	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		GetMetrics().RecordUploadError()
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeUploadJSON(w, http.StatusRequestEntityTooLarge, uploadResp{Error: "Payload too large"})
			return
		}
		Error("upload body read failed", map[string]any{"rid": rid}, err)
		writeUploadJSON(w, http.StatusInternalServerError, uploadResp{Error: "Internal server error"})
		return
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		GetMetrics().RecordUploadError()
		Error("upload body parse failed", map[string]any{"rid": rid}, err)
		writeUploadJSON(w, http.StatusInternalServerError, uploadResp{Error: "Internal server error"})
		return
	}

	req, err := parseUploadReq(raw)
	switch {
	case errors.Is(err, errMissingFields):
		GetMetrics().RecordUploadError()
		writeUploadJSON(w, http.StatusBadRequest, uploadResp{Error: "Missing required fields"})
		return
	case err != nil:
		GetMetrics().RecordUploadError()
		Error("upload body parse failed", map[string]any{"rid": rid}, err)
		writeUploadJSON(w, http.StatusInternalServerError, uploadResp{Error: "Internal server error"})
		return
	}

	finalName := req.FileID + "." + uploadExtension(req.ContentType)
	data := decodeLooseBase64(dataURIPrefix.ReplaceAllString(req.FileData, ""))

	if err := s.store.Put(r.Context(), finalName, data, req.ContentType); err != nil {
		GetMetrics().RecordUploadError()
		Error("file write failed", map[string]any{"rid": rid, "file": finalName}, err)
		writeUploadJSON(w, http.StatusInternalServerError, uploadResp{Error: "File save failed"})
		return
	}

	GetMetrics().RecordUpload(int64(len(data)), time.Since(start))
	s.recordUpload(r, UploadRecord{
		FileID:      req.FileID,
		StoredName:  finalName,
		ContentType: req.ContentType,
		FileName:    req.FileName,
		SizeBytes:   int64(len(data)),
		RequestID:   rid,
		RemoteIP:    getClientIP(r),
	})

	publicPath := dataPrefix + finalName
	writeUploadJSON(w, http.StatusOK, uploadResp{
		Success:  true,
		FilePath: publicPath,
		FileURL:  r.Host + publicPath,
	})
}

// recordUpload writes the ledger entry. Failures are logged only.
func (s *Server) recordUpload(r *http.Request, rec UploadRecord) {
	if s.ledger == nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ledger.Record(ctx, rec); err != nil {
		Warn("ledger record failed", map[string]any{"rid": rec.RequestID, "file": rec.StoredName, "error": err.Error()})
	}
}

// parseUploadReq reads the upload fields from a decoded JSON body. Any JSON
// value other than an object has no fields. A field is present when it is
// truthy: a non-empty string, a non-zero number, true, an array or an object.
// fileId of any type is rendered as text; fileData and contentType must be
// strings once present.
func parseUploadReq(raw any) (uploadReq, error) {
	obj, _ := raw.(map[string]any)

	fileID, fileData, contentType := obj["fileId"], obj["fileData"], obj["contentType"]
	if !truthy(fileID) || !truthy(fileData) || !truthy(contentType) {
		return uploadReq{}, errMissingFields
	}

	data, ok1 := fileData.(string)
	ct, ok2 := contentType.(string)
	if !ok1 || !ok2 {
		return uploadReq{}, errFieldType
	}

	name, _ := obj["fileName"].(string)
	return uploadReq{
		FileID:      jsonText(fileID),
		FileData:    data,
		FileName:    name,
		ContentType: ct,
	}, nil
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	default:
		return true
	}
}

// jsonText renders a decoded JSON value the way string interpolation does:
// numbers in shortest form, arrays joined with commas, objects as
// "[object Object]".
func jsonText(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return jsonNumber(v)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			if e != nil {
				parts[i] = jsonText(e)
			}
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

func jsonNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e+0", "e+", 1)
		return strings.Replace(s, "e-0", "e-", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// writeUploadJSON writes resp without a trailing newline.
func writeUploadJSON(w http.ResponseWriter, status int, resp uploadResp) {
	body, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// decodeLooseBase64 decodes standard or URL-safe base64 without rejecting
// anything: characters outside the alphabet are skipped, decoding stops at
// the first '=' and a dangling final character is dropped.
func decodeLooseBase64(s string) []byte {
	clean := make([]byte, 0, len(s))
scan:
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/':
			clean = append(clean, c)
		case c == '-':
			clean = append(clean, '+')
		case c == '_':
			clean = append(clean, '/')
		case c == '=':
			break scan
		}
	}
	if len(clean)%4 == 1 {
		clean = clean[:len(clean)-1]
	}

	out := make([]byte, base64.RawStdEncoding.DecodedLen(len(clean)))
	n, _ := base64.RawStdEncoding.Decode(out, clean)
	return out[:n]
}
