// SPDX-License-Identifier: MPL-2.0

package uipkg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	// Extension is the file extension of a UI package container.
	Extension = ".ppuipkg"

	// DefaultGame is the game identifier written to the root element.
	DefaultGame = "Planet Coaster 2"
)

var (
	// ErrItemNotFound is returned by Get when no item has the requested name.
	ErrItemNotFound = errors.New("item not found")

	// ErrMalformed is returned by Decode for documents that violate the
	// container invariants.
	ErrMalformed = errors.New("malformed ui package")
)

type (
	// Item is one embedded file.
	Item struct {
		// Name is the forward-slash relative path of the file.
		Name string
		// Content is the raw file content.
		Content []byte
	}

	// Package is the decoded form of a container.
	Package struct {
		Basis string
		Game  string
		Items []Item
	}

	xmlRoot struct {
		XMLName       xml.Name `xml:"PPUIPKGRoot"`
		FileCount     int      `xml:"file_count,attr"`
		IconDataCount int      `xml:"icondata_count,attr"`
		Game          string   `xml:"game,attr"`
		BasicPath     string   `xml:"basic_path"`
		Files         xmlFiles `xml:"files"`
		Types         xmlTypes `xml:"types"`
	}

	xmlFiles struct {
		Items []xmlFile `xml:"ppuipkgfile"`
	}

	xmlFile struct {
		Size    int    `xml:"file_size,attr"`
		Name    string `xml:"file_name"`
		Content string `xml:"file_content"`
	}

	// xmlTypes is reserved by the format and always empty.
	xmlTypes struct{}
)

// Encode writes pkg as a container document to w.
func Encode(w io.Writer, pkg Package) error {
	game := pkg.Game
	if game == "" {
		game = DefaultGame
	}

	root := xmlRoot{
		FileCount: len(pkg.Items),
		Game:      game,
		BasicPath: pkg.Basis,
		Files:     xmlFiles{Items: make([]xmlFile, 0, len(pkg.Items))},
	}
	for _, item := range pkg.Items {
		root.Files.Items = append(root.Files.Items, xmlFile{
			Size:    len(item.Content),
			Name:    normalizeName(item.Name),
			Content: encodeBytes(item.Content),
		})
	}

	enc := xml.NewEncoder(w)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode ui package: %w", err)
	}
	return enc.Close()
}

// Decode parses a container document and checks its invariants: the
// declared file count and per-file sizes must match the embedded data and
// every content token must be a decimal byte value.
func Decode(r io.Reader) (Package, error) {
	var root xmlRoot
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return Package{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if root.FileCount != len(root.Files.Items) {
		return Package{}, fmt.Errorf("%w: file_count is %d but %d files are embedded",
			ErrMalformed, root.FileCount, len(root.Files.Items))
	}

	pkg := Package{
		Basis: root.BasicPath,
		Game:  root.Game,
		Items: make([]Item, 0, len(root.Files.Items)),
	}
	for i, f := range root.Files.Items {
		content, err := decodeBytes(f.Content)
		if err != nil {
			return Package{}, fmt.Errorf("%w: file %d (%s): %w", ErrMalformed, i, f.Name, err)
		}
		if len(content) != f.Size {
			return Package{}, fmt.Errorf("%w: file %d (%s): file_size is %d but content has %d bytes",
				ErrMalformed, i, f.Name, f.Size, len(content))
		}
		pkg.Items = append(pkg.Items, Item{Name: f.Name, Content: content})
	}
	return pkg, nil
}

// Open reads and decodes the container at path.
func Open(path string) (Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return Package{}, err
	}
	defer f.Close()

	pkg, err := Decode(f)
	if err != nil {
		return Package{}, fmt.Errorf("%s: %w", path, err)
	}
	return pkg, nil
}

// encodeBytes renders every byte as its decimal value, separated by single
// spaces.
func encodeBytes(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	buf := make([]byte, 0, len(data)*4)
	for i, b := range data {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendUint(buf, uint64(b), 10)
	}
	return string(buf)
}

func decodeBytes(text string) ([]byte, error) {
	fields := strings.Fields(text)
	out := make([]byte, len(fields))
	for i, tok := range fields {
		v, err := strconv.ParseUint(tok, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("token %d %q is not a byte value", i, tok)
		}
		out[i] = byte(v)
	}
	return out, nil
}

func normalizeName(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}
