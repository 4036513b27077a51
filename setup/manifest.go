// Package setup installs, validates and removes the local data package.
package setup

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
)

// ManifestName is the file at the data directory root describing the
// installed data package.
const ManifestName = "manifest.toml"

// Manifest describes one installed data package release: its version, the
// Zenodo record it came from, and the checksums of every shipped file.
type Manifest struct {
	Version string         `toml:"version"`
	DOI     string         `toml:"doi"`
	Files   []ManifestFile `toml:"files"`
}

// ManifestFile is one checksummed file, with path relative to the data dir.
type ManifestFile struct {
	Path string `toml:"path"`
	MD5  string `toml:"md5"`
}

// ReadManifest loads and checks the manifest of an installed data package.
// It fails when the package version falls outside the supported range, so a
// stale CLI never misreads a newer data layout.
func ReadManifest(dataDir string) (*Manifest, error) {
	path := filepath.Join(dataDir, ManifestName)

	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.Wrapf(err, "no data package at %s", dataDir),
				"run 'metahq setup' to download the data package")
		}
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	if err := m.CheckVersion(); err != nil {
		return nil, err
	}
	return &m, nil
}

// CheckVersion verifies the manifest version against the range this build
// can read.
func (m *Manifest) CheckVersion() error {
	version, err := semver.NewVersion(m.Version)
	if err != nil {
		return errors.Wrapf(err, "invalid data package version %q", m.Version)
	}
	constraint, err := semver.NewConstraint(hq.SupportedDataVersions)
	if err != nil {
		return errors.Wrap(err, "parse supported version range")
	}
	if !constraint.Check(version) {
		return errors.WithHintf(
			errors.Newf("data package version %s is outside the supported range %s",
				m.Version, hq.SupportedDataVersions),
			"run 'metahq setup' to fetch a compatible release")
	}
	return nil
}

// Validate recomputes every file checksum and returns the paths that do not
// match the manifest, including files that are missing entirely.
func (m *Manifest) Validate(dataDir string) ([]string, error) {
	var changed []string
	for _, file := range m.Files {
		path := filepath.Join(dataDir, file.Path)
		sum, err := md5File(path)
		if err != nil {
			if os.IsNotExist(errors.UnwrapAll(err)) {
				changed = append(changed, file.Path)
				continue
			}
			return nil, err
		}
		if sum != file.MD5 {
			changed = append(changed, file.Path)
		}
	}
	return changed, nil
}

func md5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
