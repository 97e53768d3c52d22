package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/mirror/pkg/core"
)

// Serializer defines how to read and write a specific file format.
type Serializer interface {
	// Parse decodes a whole file into a document. The ID is left empty;
	// the loader assigns it.
	Parse(data []byte) (core.Document, error)
	// Serialize converts the document to bytes.
	Serialize(doc core.Document) ([]byte, error)
	// ContentType is the MIME type recorded in the index.
	ContentType() string
	// EmbedsMetadata reports whether metadata round-trips through the file
	// itself. Formats that cannot hold it get a companion file.
	EmbedsMetadata() bool
}

// Serializers maps file extensions (with dot, lower case) to serializers.
type Serializers map[string]Serializer

// DefaultSerializers returns the standard set of serializers.
func DefaultSerializers(strict bool) Serializers {
	return Serializers{
		".json": NewJSONSerializer(strict),
		".yaml": NewYAMLSerializer(strict),
		".yml":  NewYAMLSerializer(strict),
		".md":   NewMarkdownSerializer(strict),
		".txt":  TextSerializer{},
	}
}

// For returns the serializer registered for the extension of path.
// Unknown extensions are treated as plain text.
func (s Serializers) For(path string) Serializer {
	if ser, ok := s[strings.ToLower(filepath.Ext(path))]; ok {
		return ser
	}
	return TextSerializer{}
}

// Has reports whether ext has a registered serializer.
func (s Serializers) Has(ext string) bool {
	_, ok := s[strings.ToLower(ext)]
	return ok
}

// Extensions lists the registered extensions in order.
func (s Serializers) Extensions() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// --- JSON Serializer ---

// JSONSerializer stores metadata as top-level fields next to a "content" field.
type JSONSerializer struct {
	// Strict enables strict number parsing (as json.Number) to avoid precision loss.
	Strict bool
}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer(strict bool) *JSONSerializer {
	return &JSONSerializer{Strict: strict}
}

func (s *JSONSerializer) Parse(data []byte) (core.Document, error) {
	var payload map[string]any
	decoder := json.NewDecoder(bytes.NewReader(data))
	if s.Strict {
		decoder.UseNumber()
	}
	if err := decoder.Decode(&payload); err != nil {
		return core.Document{}, fmt.Errorf("invalid json: %w", err)
	}
	return splitContent(payload), nil
}

func (s *JSONSerializer) Serialize(doc core.Document) ([]byte, error) {
	return json.MarshalIndent(joinContent(doc), "", "  ")
}

func (s *JSONSerializer) ContentType() string  { return "application/json" }
func (s *JSONSerializer) EmbedsMetadata() bool { return true }

// --- YAML Serializer ---

// YAMLSerializer is the YAML twin of JSONSerializer.
type YAMLSerializer struct {
	// Strict converts numbers to json.Number, matching JSON strict mode.
	Strict bool
}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer(strict bool) *YAMLSerializer {
	return &YAMLSerializer{Strict: strict}
}

func (s *YAMLSerializer) Parse(data []byte) (core.Document, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return core.Document{}, fmt.Errorf("invalid yaml: %w", err)
	}
	doc := splitContent(payload)
	if s.Strict {
		doc.Metadata = recursiveNormalize(doc.Metadata).(core.Metadata)
	}
	return doc, nil
}

func (s *YAMLSerializer) Serialize(doc core.Document) ([]byte, error) {
	return yaml.Marshal(joinContent(doc))
}

func (s *YAMLSerializer) ContentType() string  { return "application/x-yaml" }
func (s *YAMLSerializer) EmbedsMetadata() bool { return true }

func splitContent(payload map[string]any) core.Document {
	doc := core.Document{Metadata: make(core.Metadata, len(payload))}
	for k, v := range payload {
		doc.Metadata[k] = v
	}
	if c, ok := doc.Metadata["content"].(string); ok {
		doc.Content = c
		delete(doc.Metadata, "content")
	}
	return doc
}

func joinContent(doc core.Document) map[string]any {
	payload := make(map[string]any, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		payload[k] = v
	}
	payload["content"] = doc.Content
	return payload
}

// --- Markdown Serializer ---

// MarkdownSerializer keeps metadata in a YAML frontmatter block.
type MarkdownSerializer struct {
	// Strict converts numbers to json.Number, matching JSON strict mode.
	Strict bool
}

// NewMarkdownSerializer creates a new Markdown serializer.
func NewMarkdownSerializer(strict bool) *MarkdownSerializer {
	return &MarkdownSerializer{Strict: strict}
}

var errUnclosedFrontmatter = errors.New("frontmatter started but no closing delimiter found")

func (s *MarkdownSerializer) Parse(data []byte) (core.Document, error) {
	doc := core.Document{Metadata: make(core.Metadata)}

	var rest []byte
	switch {
	case bytes.HasPrefix(data, []byte("---\n")):
		rest = data[4:]
	case bytes.HasPrefix(data, []byte("---\r\n")):
		rest = data[5:]
	default:
		doc.Content = string(data)
		return doc, nil
	}

	yamlData, body, ok := cutFrontmatter(rest)
	if !ok {
		return core.Document{}, errUnclosedFrontmatter
	}

	if err := yaml.Unmarshal(yamlData, &doc.Metadata); err != nil {
		return core.Document{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if doc.Metadata == nil {
		doc.Metadata = make(core.Metadata)
	}
	doc.Content = string(body)

	if s.Strict {
		doc.Metadata = recursiveNormalize(doc.Metadata).(core.Metadata)
	}
	return doc, nil
}

// cutFrontmatter splits at the first line consisting solely of "---".
func cutFrontmatter(rest []byte) (front, body []byte, ok bool) {
	offset := 0
	for offset <= len(rest) {
		line := rest[offset:]
		end := bytes.IndexByte(line, '\n')
		next := len(rest) + 1
		if end >= 0 {
			line = line[:end]
			next = offset + end + 1
		}
		if string(bytes.TrimRight(line, "\r")) == "---" {
			if next > len(rest) {
				return rest[:offset], nil, true
			}
			return rest[:offset], rest[next:], true
		}
		offset = next
	}
	return nil, nil, false
}

func (s *MarkdownSerializer) Serialize(doc core.Document) ([]byte, error) {
	var buf bytes.Buffer
	if len(doc.Metadata) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]any(doc.Metadata)); err != nil {
			return nil, err
		}
		encoder.Close()
		buf.WriteString("---\n")
	}
	buf.WriteString(doc.Content)
	return buf.Bytes(), nil
}

func (s *MarkdownSerializer) ContentType() string  { return "text/x-markdown" }
func (s *MarkdownSerializer) EmbedsMetadata() bool { return true }

// --- Text Serializer ---

// TextSerializer stores the content verbatim; metadata goes to a companion file.
type TextSerializer struct{}

func (TextSerializer) Parse(data []byte) (core.Document, error) {
	return core.Document{Content: string(data), Metadata: make(core.Metadata)}, nil
}

func (TextSerializer) Serialize(doc core.Document) ([]byte, error) {
	return []byte(doc.Content), nil
}

func (TextSerializer) ContentType() string  { return "text/plain" }
func (TextSerializer) EmbedsMetadata() bool { return false }

// --- Companion metadata ---

func parseCompanion(data []byte) (core.Metadata, error) {
	meta := make(core.Metadata)
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("invalid companion metadata: %w", err)
	}
	if meta == nil {
		meta = make(core.Metadata)
	}
	return meta, nil
}

func serializeCompanion(meta core.Metadata) ([]byte, error) {
	return yaml.Marshal(map[string]any(meta))
}

// recursiveNormalize traverses the map/slice and converts numeric types to json.Number.
// This ensures consistency with JSON Strict mode.
func recursiveNormalize(val any) any {
	switch v := val.(type) {
	case core.Metadata:
		m := make(core.Metadata, len(v))
		for k, val := range v {
			m[k] = recursiveNormalize(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = recursiveNormalize(val)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, val := range v {
			l[i] = recursiveNormalize(val)
		}
		return l
	case int:
		return json.Number(fmt.Sprintf("%d", v))
	case int64:
		return json.Number(fmt.Sprintf("%d", v))
	case uint64:
		return json.Number(fmt.Sprintf("%d", v))
	case float64:
		return json.Number(fmt.Sprintf("%v", v))
	default:
		return v
	}
}
