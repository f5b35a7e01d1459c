package http

import (
	"errors"
	"io"
	"net/http"

	"despesas/internal/core"
)

// readRecordInput reads a bounded JSON body and validates it as a record.
// Any decoding or validation problem comes back as core.ValidationErrors.
func (s *Server) readRecordInput(w http.ResponseWriter, r *http.Request) (core.RecordInput, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return core.RecordInput{}, core.ValidationErrors{core.FieldBody: {"Request body too large"}}
		}
		return core.RecordInput{}, core.ValidationErrors{core.FieldBody: {core.MsgInvalidBody}}
	}
	return core.ParseRecordInput(body)
}

// pathID validates the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	return core.ParseID(r.PathValue("id"))
}
