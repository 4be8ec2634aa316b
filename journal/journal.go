// Package journal is the trading journal session: the trade ledger, the
// summary planning parameters, their persistence and import/export.
package journal

import "errors"

// Durable store keys.
const (
	SummaryKey = "tradeJournalSummary"
	TradesKey  = "tradeJournalTrades"
)

// DefaultExportFile is the suggested name for an exported journal.
const DefaultExportFile = "trade-journal-data.json"

var (
	// ErrParse means an import document was not valid JSON or lacked the
	// summaryData object or the trades array.
	ErrParse = errors.New("invalid journal data")
	// ErrFileRead means an import file could not be read.
	ErrFileRead = errors.New("read journal file")
	// ErrStorage means the durable store could not be written. The
	// in-memory state is still current.
	ErrStorage = errors.New("journal storage")

	ErrNotFound     = errors.New("trade not found")
	ErrDuplicateID  = errors.New("duplicate trade id")
	ErrInvalidTrade = errors.New("invalid trade")
	ErrUnknownField = errors.New("unknown summary field")
	ErrInvalidValue = errors.New("invalid summary value")
)
