package store

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Versions stamped on every record. DecodeRecord rejects any other pair.
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// ErrVersionMismatch reports a record written by another schema or codec version.
var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeRecord serializes r as JSON.
func EncodeRecord(r Record) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRecord parses a record and checks its versions.
func DecodeRecord(data []byte) (Record, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, err
	}
	if err := checkVersion(record); err != nil {
		return Record{}, err
	}
	return record, nil
}

func checkVersion(r Record) error {
	if r.SchemaVersion != CurrentSchemaVersion || r.CodecVersion != CurrentCodecVersion {
		return errors.Wrapf(ErrVersionMismatch, "schema=%d codec=%d", r.SchemaVersion, r.CodecVersion)
	}
	return nil
}
