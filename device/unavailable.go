// SPDX-License-Identifier: EPL-2.0

//go:build !((linux && cgo) || windows || darwin)

package device

import "errors"

func openOto(Format, Renderer) (Device, error) {
	return nil, errors.New("oto: built without audio support")
}

func openBeep(Format, Renderer) (Device, error) {
	return nil, errors.New("beep: built without audio support")
}
