package apiutil

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/codr1/axl-portal/internal/imaging"
	"github.com/codr1/axl-portal/internal/ratelimit"
)

const uploadField = "file"

// ReadImage pulls the uploaded file out of a multipart form. A missing file
// returns (nil, nil). Bodies beyond the preprocessor's limit are not read in
// full; the returned Size still exceeds the limit so validation rejects it.
func ReadImage(w http.ResponseWriter, r *http.Request) (*imaging.Source, error) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxSourceBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &imaging.Source{Size: imaging.MaxSourceBytes + 1}, nil
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse upload: %w", err)
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	src := &imaging.Source{
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	if header.Size > imaging.MaxSourceBytes {
		return src, nil
	}
	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	src.Data = data
	return src, nil
}

// AllowUpload spends one token of key's image budget. When none is left it
// sets Retry-After and returns false. A nil budget allows everything.
func AllowUpload(w http.ResponseWriter, buckets *ratelimit.Buckets, key string) bool {
	if buckets == nil {
		return true
	}
	res := buckets.Allow(key)
	if !res.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
	}
	return res.Allowed
}
