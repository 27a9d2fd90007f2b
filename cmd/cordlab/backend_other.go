//go:build !linux

package main

import "fmt"

func ovsBackend() (*backend, error) {
	return nil, fmt.Errorf("the ovs emulator needs Linux")
}
