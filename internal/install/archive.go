// ABOUTME: Reads package archives: zip files carrying package.xml and classes.xml.
// ABOUTME: Metadata and class declarations are found by scanning XML tokens.

package install

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Extension is the required file extension of package archives.
const Extension = ".qrp"

const (
	metadataFile = "package.xml"
	classesFile  = "classes.xml"
	classesDir   = "classes/"

	// DestinationDecoder and DestinationView are the tags classes.xml declares entries under.
	DestinationDecoder = "decoder"
	DestinationView    = "view"
)

// Metadata is the package.xml content.
type Metadata struct {
	Name    string
	Brief   string
	Version string
}

// Entry is one class declaration: a destination tag with its attributes.
type Entry struct {
	Destination string
	Class       string
	Attrs       map[string]string
}

// Scheme is the decoder entry's scheme attribute.
func (e Entry) Scheme() string { return e.Attrs["scheme"] }

// Kind is the view entry's kind attribute.
func (e Entry) Kind() string { return e.Attrs["kind"] }

// Capability is the view entry's capability attribute.
func (e Entry) Capability() string { return e.Attrs["capability"] }

// Archive is an opened package file.
type Archive struct {
	zr    *zip.Reader
	close func() error
}

// OpenArchive opens a package file from disk.
func OpenArchive(p string) (*Archive, error) {
	rc, err := zip.OpenReader(p)
	if err != nil {
		return nil, err
	}
	return &Archive{zr: &rc.Reader, close: rc.Close}, nil
}

// ReadArchive opens a package held in memory.
func ReadArchive(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &Archive{zr: zr, close: func() error { return nil }}, nil
}

func (a *Archive) Close() error {
	return a.close()
}

// ReadFile returns the content of a file inside the archive.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f, err := a.zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Metadata reads package.xml. Missing elements are left empty.
func (a *Archive) Metadata() (Metadata, error) {
	data, err := a.ReadFile(metadataFile)
	if err != nil {
		return Metadata{}, fmt.Errorf("read %s: %w", metadataFile, err)
	}

	var md Metadata
	var current string
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Metadata{}, fmt.Errorf("parse %s: %w", metadataFile, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
		case xml.EndElement:
			current = ""
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			switch current {
			case "name":
				md.Name += text
			case "brief":
				md.Brief += text
			case "version":
				md.Version += text
			}
		}
	}
	return md, nil
}

// Classes returns the entries of classes.xml declared under destination, in
// document order. Entries without a class attribute are skipped.
func (a *Archive) Classes(destination string) ([]Entry, error) {
	data, err := a.ReadFile(classesFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", classesFile, err)
	}

	var entries []Entry
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", classesFile, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != destination {
			continue
		}
		e := Entry{Destination: destination, Attrs: make(map[string]string)}
		for _, attr := range start.Attr {
			if attr.Name.Local == "class" {
				e.Class = strings.TrimSpace(attr.Value)
				continue
			}
			e.Attrs[attr.Name.Local] = strings.TrimSpace(attr.Value)
		}
		if e.Class == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Definition returns classes/<class>.xml when the archive carries one.
func (a *Archive) Definition(class string) ([]byte, bool) {
	if class == "" || strings.ContainsAny(class, `/\`) {
		return nil, false
	}
	data, err := a.ReadFile(path.Join(classesDir, class+".xml"))
	if err != nil {
		return nil, false
	}
	return data, true
}
