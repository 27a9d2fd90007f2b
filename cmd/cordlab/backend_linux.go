//go:build linux

package main

import (
	"github.com/newtron-network/cordlab/pkg/ovsnet"
	"github.com/newtron-network/cordlab/pkg/remote"
)

func ovsBackend() (*backend, error) {
	n := ovsnet.New()
	return &backend{
		inj:     n,
		prov:    ovsnet.Provisioner{},
		runner:  remote.LocalRunner{},
		destroy: n.Destroy,
	}, nil
}
