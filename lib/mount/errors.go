package mount

import "errors"

var (
	ErrAlreadyMounted = errors.New("mountpoint already in ledger")
)
