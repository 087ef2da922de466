package repository

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code raised when an INSERT breaks a
// unique constraint. The repositories lean on it for the quote-per-carrier
// and assignment-per-shipment invariants.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// jsonbValue marshals nested documents (horses, location trails) into a JSONB
// column. Nil slices/pointers become SQL NULL.
func jsonbValue(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func jsonbScan(raw sql.NullString, dst interface{}) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw.String), dst)
}
