// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/smartshelf/shelfweb/config"
	"github.com/smartshelf/shelfweb/pkg/validate"
)

// ErrBadRequest wraps every body that could not be decoded.
var ErrBadRequest = errors.New("bind: bad request")

// maxBodyBytes returns the configured request body size limit (default 1 MB).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || n <= 0 {
		return 1 << 20
	}
	return n
}

// JSON decodes r.Body as JSON into dest and runs validation.
// A malformed or oversized body yields an error wrapping ErrBadRequest;
// failed rules yield a *validate.Error.
func JSON(r *http.Request, dest interface{}) error {
	if err := Decode(r, dest); err != nil {
		return err
	}
	return validate.Check(dest)
}

// Decode decodes r.Body as JSON into dest without validating. An empty body
// leaves dest untouched.
func Decode(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return nil
	}
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: body too large (max %d bytes)", ErrBadRequest, maxErr.Limit)
		}
		return fmt.Errorf("%w: invalid JSON: %v", ErrBadRequest, err)
	}
	return nil
}
