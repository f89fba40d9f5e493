// SPDX-License-Identifier: MPL-2.0

package dist

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ManifestFileName is the mod metadata file at the top of a mod folder.
const ManifestFileName = "Manifest.xml"

// ErrMissingName is returned when the manifest has no non-blank <Name>.
var ErrMissingName = errors.New("Manifest.xml does not contain a valid <Name> element")

// Manifest holds the manifest fields the packager reads.
type Manifest struct {
	XMLName xml.Name
	Name    string `xml:"Name"`
}

// ReadManifest parses the manifest at path. The returned Name is trimmed;
// a missing or blank Name yields ErrMissingName.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse %s: %w", path, err)
	}

	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return Manifest{}, ErrMissingName
	}
	return m, nil
}
