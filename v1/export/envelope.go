package export

import (
	"strconv"

	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
)

// Origin identifies where a batch of records was read from.
type Origin struct {
	Source  string `json:"source"`
	Table   string `json:"table"`
	Version int    `json:"version"`
}

// Envelope is one exported record together with its origin.
type Envelope struct {
	Origin
	RowID  int64           `json:"rowid"`
	Record kismetdb.Record `json:"record"`
}

// Key identifies the envelope across exports of the same log.
func (e Envelope) Key() string {
	return e.Source + ":" + e.Table + ":" + strconv.FormatInt(e.RowID, 10)
}
