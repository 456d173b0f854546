// Package paths provides centralized path construction inside a target root.
//
// All joins go through filepath-securejoin: the target tree is foreign
// content mid-install, and a symlink planted at e.g. etc/apt must resolve
// inside the target root, never escape into the host filesystem.
package paths

import (
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Paths provides typed path construction for a target filesystem tree.
type Paths struct {
	targetRoot string
}

// New creates a Paths instance for the given target root.
func New(targetRoot string) *Paths {
	return &Paths{targetRoot: targetRoot}
}

// TargetRoot returns the root of the target tree.
func (p *Paths) TargetRoot() string {
	return p.targetRoot
}

// Join resolves a target-relative path, confining symlink resolution to the
// target root.
func (p *Paths) Join(parts ...string) (string, error) {
	return securejoin.SecureJoin(p.targetRoot, filepath.Join(parts...))
}

// EtcApt returns the target's apt configuration directory.
func (p *Paths) EtcApt() (string, error) {
	return p.Join("etc", "apt")
}

// SourcesList returns the target's main apt source-list file.
func (p *Paths) SourcesList() (string, error) {
	return p.Join("etc", "apt", "sources.list")
}

// OriginalSourcesList returns where the provisioning tool's source list is
// parked while the media-only list is in effect.
func (p *Paths) OriginalSourcesList() (string, error) {
	return p.Join("etc", "apt", "sources.list.d", "original.list")
}

// AptProxyConf returns the proxy fragment the provisioning tool generates.
func (p *Paths) AptProxyConf() (string, error) {
	return p.Join("etc", "apt", "apt.conf.d", "90curtin-aptproxy")
}

// AptListsCache returns the target's package index cache directory.
func (p *Paths) AptListsCache() (string, error) {
	return p.Join("var", "lib", "apt", "lists")
}

// MediaMount returns the mountpoint for the installation media inside the
// target.
func (p *Paths) MediaMount() (string, error) {
	return p.Join("cdrom")
}

// LsbRelease returns the target's lsb-release file.
func (p *Paths) LsbRelease() (string, error) {
	return p.Join("etc", "lsb-release")
}
