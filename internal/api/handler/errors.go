package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/eventledger/internal/api/apierr"
	"github.com/mcoot/eventledger/internal/model"
)

// maxBodyBytes caps request bodies; registration forms are tiny
const maxBodyBytes = 64 << 10

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return NewInvalidRequestError("request body is required")
		}
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}

// eventDate parses the {date} path variable
func eventDate(r *http.Request) (model.EventDate, error) {
	return model.ParseEventDate(mux.Vars(r)["date"])
}

// playerID returns the {player_id} path variable
func playerID(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["player_id"])
}

// amountOp is the shape of ledger.Service.Deduct and Credit
type amountOp func(ctx context.Context, date model.EventDate, id model.PlayerID, amount int64) (model.TransferResult, error)
