package extcore

import (
	"net/http"
)

// ResponseConfig describes a response a handler wants to send.
type ResponseConfig[Body any] struct {
	Status  int               // default: 200
	Headers map[string]string // default: none
	Body    Body
}

// HandlerResponse is the response returned by endpoint handlers.
type HandlerResponse[Returned any] struct {
	Status  int
	Headers map[string]string
	Body    Returned
}

// NewHandlerResponse applies the defaults to cfg.
func NewHandlerResponse[Returned any](cfg ResponseConfig[Returned]) *HandlerResponse[Returned] {
	resp := &HandlerResponse[Returned]{
		Status:  cfg.Status,
		Headers: cfg.Headers,
		Body:    cfg.Body,
	}
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	return resp
}

// writeResponse writes resp with the encoder negotiated from Accept. A nil
// response is a 200 with an empty body.
func writeResponse[Returned any](w http.ResponseWriter, r *http.Request, resp *HandlerResponse[Returned], codecs *codecRegistry) {
	enc := codecs.negotiate(r.Header.Get("Accept"))

	if resp == nil {
		w.Header().Set("Content-Type", enc.ContentType())
		w.WriteHeader(http.StatusOK)
		return
	}

	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", enc.ContentType())
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if status == http.StatusNoContent || status == http.StatusNotModified || r.Method == http.MethodHead {
		return
	}
	//nolint:errcheck,gosec // best-effort after WriteHeader
	enc.Encode(w, resp.Body)
}
