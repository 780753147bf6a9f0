package exitcode

const (
	Success     = 0
	UsageError  = 1
	SchemaError = 2
	EncodeError = 3
	DecodeError = 4
	DBConnError = 5
	CopyError   = 6
)
