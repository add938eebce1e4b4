package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"paygateway/internal/apierror"
)

// Error is the public error body.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes e as the public error body.
func WriteError(w http.ResponseWriter, e *apierror.Error) {
	WriteJSON(w, e.HTTPStatus, Error{Code: e.Code, Description: e.Description})
}

// Fail writes err. Anything that is not already a public error becomes an
// internal error so backend details never leak.
func Fail(w http.ResponseWriter, err error) {
	if e, ok := apierror.As(err); ok {
		WriteError(w, e)
		return
	}
	WriteError(w, apierror.Internal())
}

// Decode reads a JSON body into v. Malformed bodies are reported as
// UnparseableBody, values of the wrong type as InvalidAttribute.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apierror.InvalidAttribute(typeErr.Field, "Must be of type "+typeName(typeErr.Type.Kind().String()))
		}
		return apierror.UnparseableBody()
	}
	return nil
}

func typeName(kind string) string {
	switch kind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "float32", "float64":
		return "number"
	case "bool":
		return "boolean"
	case "map", "struct":
		return "object"
	case "slice", "array":
		return "array"
	default:
		return kind
	}
}
