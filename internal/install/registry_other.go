//go:build !windows

package install

type registryFinder struct{}

func (registryFinder) LibPath() (string, error) {
	return "", ErrNoLibPath
}
