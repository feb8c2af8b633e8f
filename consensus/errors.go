package consensus

import "fmt"

type ErrorCode string

const (
	TX_ERR_PARSE ErrorCode = "TX_ERR_PARSE"

	BLOCK_ERR_PARSE           ErrorCode = "BLOCK_ERR_PARSE"
	BLOCK_ERR_POW_INVALID     ErrorCode = "BLOCK_ERR_POW_INVALID"
	BLOCK_ERR_LINKAGE_INVALID ErrorCode = "BLOCK_ERR_LINKAGE_INVALID"
	BLOCK_ERR_MERKLE_INVALID  ErrorCode = "BLOCK_ERR_MERKLE_INVALID"
	BLOCK_ERR_TARGET_INVALID  ErrorCode = "BLOCK_ERR_TARGET_INVALID"
	BLOCK_ERR_TIMESTAMP_OLD   ErrorCode = "BLOCK_ERR_TIMESTAMP_OLD"
	BLOCK_ERR_TIMESTAMP_FUTURE ErrorCode = "BLOCK_ERR_TIMESTAMP_FUTURE"
)

// TxError is the taxonomy-carrying error type shared by header, block, and
// transaction handling: a stable machine-checkable code plus a human detail.
type TxError struct {
	Code ErrorCode
	Msg  string
}

func (e *TxError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func txerr(code ErrorCode, msg string) error {
	return &TxError{Code: code, Msg: msg}
}
