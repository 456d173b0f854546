package hostinfo

import "errors"

var (
	ErrNoCodename = errors.New("no DISTRIB_CODENAME entry")
)
