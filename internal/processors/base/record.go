package base

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

// eventColumns are shared by every append-only event table. The
// (tx_hash, call_index, event_index) triple identifies a single event.
var eventColumns = []string{"contract", "block_height", "block_time", "tx_hash", "call_index", "event_index"}

// Column is one extra column of an event row.
type Column struct {
	Name  string
	Value any
}

// InsertEvent appends a row for event i of call to an append-only table.
func (p Processor) InsertEvent(ctx context.Context, tx *sql.Tx, table string,
	call processor.Call, i int, cols ...Column) error {
	names := make([]string, 0, len(eventColumns)+len(cols))
	names = append(names, eventColumns...)

	args := make([]any, 0, cap(names))
	args = append(args,
		db.ContractAddressText(call.Contract),
		call.BlockHeight,
		call.BlockTime.Unix(),
		call.TxHash.Hex(),
		call.CallIndex,
		i,
	)

	for _, c := range cols {
		names = append(names, c.Name)
		args = append(args, c.Value)
	}

	placeholders := make([]string, len(args))
	for j := range args {
		placeholders[j] = fmt.Sprintf("$%d", j+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(placeholders, ", "))

	_, err := p.Exec(ctx, tx, "insert "+table, query, args...)
	return err
}
