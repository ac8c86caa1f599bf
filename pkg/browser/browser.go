// Package browser opens web pages in the user's default browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrUnsupported is returned on platforms without a known opener.
var ErrUnsupported = errors.New("no browser opener for this platform")

// command returns the opener invocation for goos
func command(goos, target string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	}
	return "", nil, ErrUnsupported
}

// Open opens an http(s) URL in the default browser without waiting for it.
func Open(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open non-web URL %q", target)
	}

	name, args, err := command(runtime.GOOS, u.String())
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}
