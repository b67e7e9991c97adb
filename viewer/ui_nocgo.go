//go:build tinygo || !cgo

package viewer

import "errors"

func ui(h *Host, cfg UIConfig) error {
	return errors.New("require cgo for window rendering")
}
