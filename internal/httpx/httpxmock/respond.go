package httpxmock

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// JSONResponse builds a response with v encoded as the body.
func JSONResponse(status int, v any) *http.Response {
	buffer := &bytes.Buffer{}
	if err := json.NewEncoder(buffer).Encode(v); err != nil {
		panic(err)
	}
	return RawResponse(status, buffer.String())
}

// RawResponse builds a response with body as-is.
func RawResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}
