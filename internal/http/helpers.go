package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"budgetcal/internal/auth"
	"budgetcal/internal/cashflow"
	"budgetcal/internal/core"
	"budgetcal/internal/log"
	"budgetcal/internal/services"
	"budgetcal/internal/store"
)

const maxBodyBytes = 1 << 20

var (
	errBadParam = errors.New("invalid query parameter")
	errBadBody  = errors.New("invalid request body")
)

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errBadParam),
		errors.Is(err, errBadBody),
		errors.Is(err, core.ErrMalformedDate),
		errors.Is(err, cashflow.ErrInvalidRange),
		errors.Is(err, cashflow.ErrInvalidHorizon),
		errors.Is(err, cashflow.ErrInvalidLookback):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldPath, r.URL.Path,
			log.FieldUserID, auth.UserID(r.Context()),
			log.FieldError, err)
		writeJSON(w, status, errorBody{Error: http.StatusText(status)})
		return
	}
	writeJSON(w, status, errorBody{Error: http.StatusText(status), Details: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadBody)
		}
		return fmt.Errorf("%w: %w", errBadBody, err)
	}
	return nil
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func queryDate(r *http.Request, name string, def core.Date) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w %s: %w", errBadParam, name, err)
	}
	return d, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w %s: %q is not an integer", errBadParam, name, v)
	}
	return n, nil
}

// queryBoundedInt is queryInt restricted to [0, limit].
func queryBoundedInt(r *http.Request, name string, limit int) (int, error) {
	n, err := queryInt(r, name, 0)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > limit {
		return 0, fmt.Errorf("%w %s: %d is outside 0..%d", errBadParam, name, n, limit)
	}
	return n, nil
}

func queryMoney(r *http.Request, name string) (core.Money, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return core.Zero, nil
	}
	m, err := core.ParseMoney(v)
	if err != nil {
		return core.Zero, fmt.Errorf("%w %s: %w", errBadParam, name, err)
	}
	return m, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w %s: %q is not a boolean", errBadParam, name, v)
	}
	return b, nil
}
