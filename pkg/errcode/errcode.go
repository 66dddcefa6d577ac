package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Store errors
	StoreConnectionError
	StoreMigrateError
	StoreNotConnectedError

	// Archive errors
	ArchiveOpenError
	ArchiveBudgetError
	ArchiveUnsafeEntryError
	ArchiveExtractError
	ArchiveWriteError

	// Payload errors
	PayloadMalformedError
	PayloadVersionError
	PayloadNotFoundError

	// Import errors
	ImportWordsetError

	// Export errors
	ExportScopeError
	ExportLimitError
	ExportMediaError

	// History errors
	HistoryReadError
	HistoryWriteError
	HistoryEntryNotFoundError
	HistoryAlreadyUndoneError

	// Optimize errors
	OptimizeOrphanError
	OptimizeMediaSweepError
	OptimizeVacuumError
)
