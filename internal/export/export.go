// Package export serializes merged modules into a stable JSON document.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/viant/afs"

	"github.com/abramin/symmerge/internal/symbols"
)

// FormatVersion is bumped whenever the document layout changes.
const FormatVersion = "1"

// Document is the persisted form of a merged build.
type Document struct {
	Format   string                           `json:"format"`
	Versions symbols.Versions                 `json:"versions"`
	Names    []string                         `json:"module_names"`
	Modules  map[string]*symbols.MergedModule `json:"modules"`
}

// NewDocument assembles a document. Module names are listed sorted.
func NewDocument(versions symbols.Versions, modules map[string]*symbols.MergedModule) *Document {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Document{
		Format:   FormatVersion,
		Versions: versions,
		Names:    names,
		Modules:  modules,
	}
}

// Marshal encodes the merged mapping. Equal inputs give identical bytes:
// map keys are emitted sorted and variant lists keep their merge order.
func Marshal(versions symbols.Versions, modules map[string]*symbols.MergedModule) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(versions, modules)); err != nil {
		return nil, fmt.Errorf("encoding merged modules: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a document produced by Marshal.
func Unmarshal(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decoding merged modules: %w", err)
	}
	if doc.Format != FormatVersion {
		return nil, fmt.Errorf("unsupported document format %q", doc.Format)
	}
	return doc, nil
}

// Write marshals the merged mapping and uploads it to URL.
func Write(ctx context.Context, fs afs.Service, URL string, versions symbols.Versions, modules map[string]*symbols.MergedModule) error {
	data, err := Marshal(versions, modules)
	if err != nil {
		return err
	}
	if err := fs.Upload(ctx, URL, 0644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", URL, err)
	}
	return nil
}

// Read downloads and decodes a document from URL.
func Read(ctx context.Context, fs afs.Service, URL string) (*Document, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", URL, err)
	}
	return Unmarshal(data)
}
