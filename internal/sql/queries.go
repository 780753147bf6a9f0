package sql

import "embed"

//go:embed migrations
var Migrations embed.FS

//go:embed queries/register_response_file.sql
var RegisterResponseFile string

//go:embed queries/update_response_file_status.sql
var UpdateResponseFileStatus string

//go:embed queries/finalize_response_file.sql
var FinalizeResponseFile string

//go:embed queries/delete_ledger_batch.sql
var DeleteLedgerBatch string
