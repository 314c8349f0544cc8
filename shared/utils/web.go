package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/itchan-dev/aurum/shared/errors"
	"github.com/itchan-dev/aurum/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	code := errors.StatusCode(err)
	if code >= http.StatusInternalServerError {
		logger.Log.Error("request failed", "error", err)
		// don't leak internals
		http.Error(w, "Internal error", code)
		return
	}
	http.Error(w, err.Error(), code)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	return Validate(body)
}

func Validate(body any) error {
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}
