//go:build windows

package install

import (
	"golang.org/x/sys/windows/registry"
)

type registryFinder struct{}

// LibPath reads HKLM\SOFTWARE\ImageMagick\Current\LibPath.
func (registryFinder) LibPath() (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\ImageMagick\Current`, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, _, err := k.GetStringValue("LibPath")
	if err != nil {
		return "", err
	}
	return v, nil
}
