package data

import (
	"github.com/rs/xid"
)

// ValidXID Validates that the supplied string is an xid.
func ValidXID(id string) bool {
	_, err := xid.FromString(id)
	return err == nil
}
