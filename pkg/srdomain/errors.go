package srdomain

import (
	"fmt"

	"github.com/newtron-network/cordlab/pkg/util"
)

// NoAttachmentError reports a host with no linked non-loopback interface.
type NoAttachmentError struct {
	Domain int
	Host   string
}

func (e *NoAttachmentError) Error() string {
	return fmt.Sprintf("domain %d: host %s has no attachment interface", e.Domain, e.Host)
}

func (e *NoAttachmentError) Unwrap() error {
	return util.ErrNoAttachment
}
