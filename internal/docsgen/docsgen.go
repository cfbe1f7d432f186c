// Package docsgen renders markdown reference pages from the API description.
package docsgen

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Page is one rendered markdown file, relative to the output directory.
type Page struct {
	Path    string
	Content string
}

type endpoint struct {
	method      string
	path        string
	operationID string
	summary     string
	description string
	params      []param
	body        []string
	responses   []response
}

type param struct {
	name     string
	in       string
	typ      string
	required bool
	desc     string
}

type response struct {
	code string
	desc string
}

// Render builds index.md, one page per tag and schemas.md.
func Render(doc *openapi3.T) []Page {
	byTag := map[string][]endpoint{}
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			tags := op.Tags
			if len(tags) == 0 {
				tags = []string{"Untagged"}
			}
			ep := buildEndpoint(path, method, item, op)
			for _, tag := range tags {
				byTag[tag] = append(byTag[tag], ep)
			}
		}
	}

	tagDesc := map[string]string{}
	for _, tag := range doc.Tags {
		tagDesc[tag.Name] = cleanInline(tag.Description)
	}

	tags := sortedKeys(byTag)
	pages := make([]Page, 0, len(tags)+2)
	pages = append(pages, Page{Path: "index.md", Content: renderIndex(doc, tags, tagDesc, byTag)})
	for _, tag := range tags {
		eps := byTag[tag]
		sortEndpoints(eps)
		pages = append(pages, Page{
			Path:    filepath.Join("endpoints", slug(tag)+".md"),
			Content: renderTag(tag, tagDesc[tag], eps),
		})
	}
	pages = append(pages, Page{Path: "schemas.md", Content: renderSchemas(doc.Components.Schemas)})
	return pages
}

// Write renders doc into outDir, replacing whatever was there.
func Write(doc *openapi3.T, outDir string) ([]Page, error) {
	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("clean output dir: %w", err)
	}
	pages := Render(doc)
	for _, p := range pages {
		path := filepath.Join(outDir, p.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create directory %q: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(p.Content), 0o600); err != nil {
			return nil, fmt.Errorf("write %q: %w", path, err)
		}
	}
	return pages, nil
}

func buildEndpoint(path, method string, item *openapi3.PathItem, op *openapi3.Operation) endpoint {
	ep := endpoint{
		method:      strings.ToUpper(method),
		path:        path,
		operationID: strings.TrimSpace(op.OperationID),
		summary:     cleanInline(op.Summary),
		description: cleanInline(op.Description),
	}

	refs := append(slices.Clone(item.Parameters), op.Parameters...)
	for _, ref := range refs {
		if ref == nil || ref.Value == nil {
			continue
		}
		ep.params = append(ep.params, param{
			name:     ref.Value.Name,
			in:       ref.Value.In,
			typ:      schemaTypeFromRef(ref.Value.Schema),
			required: ref.Value.Required,
			desc:     cleanInline(ref.Value.Description),
		})
	}
	sort.Slice(ep.params, func(i, j int) bool {
		if ep.params[i].in != ep.params[j].in {
			return ep.params[i].in < ep.params[j].in
		}
		return ep.params[i].name < ep.params[j].name
	})

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		for _, ct := range sortedKeys(op.RequestBody.Value.Content) {
			ep.body = append(ep.body, ct+": "+schemaTypeFromRef(op.RequestBody.Value.Content[ct].Schema))
		}
	}

	for code, ref := range op.Responses.Map() {
		desc := ""
		if ref != nil && ref.Value != nil && ref.Value.Description != nil {
			desc = cleanInline(*ref.Value.Description)
		}
		ep.responses = append(ep.responses, response{code: code, desc: desc})
	}
	sort.Slice(ep.responses, func(i, j int) bool { return ep.responses[i].code < ep.responses[j].code })
	return ep
}

func renderIndex(doc *openapi3.T, tags []string, tagDesc map[string]string, byTag map[string][]endpoint) string {
	var b strings.Builder
	b.WriteString(generatedHeader)
	title := "API Reference"
	if doc.Info != nil && doc.Info.Title != "" {
		title = doc.Info.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if doc.Info != nil && doc.Info.Description != "" {
		b.WriteString(cleanInline(doc.Info.Description))
		b.WriteString("\n\n")
	}
	b.WriteString("| Group | Description | Operations |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, tag := range tags {
		fmt.Fprintf(&b, "| [%s](./endpoints/%s.md) | %s | %d |\n", tag, slug(tag), tableSafe(tagDesc[tag]), len(byTag[tag]))
	}
	b.WriteString("\nSee [schemas](./schemas.md) for request and response bodies.\n")
	return b.String()
}

func renderTag(tag, desc string, eps []endpoint) string {
	var b strings.Builder
	b.WriteString(generatedHeader)
	fmt.Fprintf(&b, "# %s\n\n", tag)
	if desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	for _, ep := range eps {
		fmt.Fprintf(&b, "## `%s %s`\n\n", ep.method, ep.path)
		if ep.summary != "" {
			b.WriteString(ep.summary)
			b.WriteString("\n\n")
		}
		if ep.description != "" {
			b.WriteString(ep.description)
			b.WriteString("\n\n")
		}
		if ep.operationID != "" {
			fmt.Fprintf(&b, "Operation ID: `%s`\n\n", ep.operationID)
		}
		if len(ep.params) > 0 {
			b.WriteString("| Parameter | In | Type | Required | Description |\n")
			b.WriteString("| --- | --- | --- | --- | --- |\n")
			for _, p := range ep.params {
				fmt.Fprintf(&b, "| `%s` | %s | `%s` | `%t` | %s |\n", p.name, p.in, p.typ, p.required, tableSafe(p.desc))
			}
			b.WriteString("\n")
		}
		for _, body := range ep.body {
			fmt.Fprintf(&b, "Request body: `%s`\n\n", body)
		}
		if len(ep.responses) > 0 {
			b.WriteString("| Status | Description |\n")
			b.WriteString("| --- | --- |\n")
			for _, r := range ep.responses {
				fmt.Fprintf(&b, "| `%s` | %s |\n", r.code, tableSafe(r.desc))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderSchemas(schemas openapi3.Schemas) string {
	var b strings.Builder
	b.WriteString(generatedHeader)
	b.WriteString("# Schemas\n\n")
	for _, name := range sortedKeys(schemas) {
		fmt.Fprintf(&b, "## `%s`\n\n", name)
		ref := schemas[name]
		if ref == nil || ref.Value == nil {
			b.WriteString("Schema body is empty.\n\n")
			continue
		}
		s := ref.Value
		if s.Description != "" {
			b.WriteString(cleanInline(s.Description))
			b.WriteString("\n\n")
		}
		if len(s.Properties) == 0 {
			fmt.Fprintf(&b, "Type: `%s`\n\n", schemaType(s))
			continue
		}
		b.WriteString("| Field | Type | Required | Description |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, prop := range sortedKeys(s.Properties) {
			pref := s.Properties[prop]
			desc := ""
			if pref != nil && pref.Value != nil {
				desc = cleanInline(pref.Value.Description)
				if len(pref.Value.Enum) > 0 {
					desc = strings.TrimSpace(desc + " One of " + enumList(pref.Value.Enum) + ".")
				}
			}
			fmt.Fprintf(&b, "| `%s` | `%s` | `%t` | %s |\n", prop, schemaTypeFromRef(pref), slices.Contains(s.Required, prop), tableSafe(desc))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sortEndpoints(eps []endpoint) {
	order := map[string]int{"GET": 0, "POST": 1, "PUT": 2, "PATCH": 3, "DELETE": 4}
	sort.Slice(eps, func(i, j int) bool {
		if eps[i].path != eps[j].path {
			return eps[i].path < eps[j].path
		}
		return order[eps[i].method] < order[eps[j].method]
	})
}

func schemaTypeFromRef(ref *openapi3.SchemaRef) string {
	if ref == nil {
		return "unknown"
	}
	if ref.Ref != "" {
		return ref.Ref[strings.LastIndex(ref.Ref, "/")+1:]
	}
	return schemaType(ref.Value)
}

func schemaType(s *openapi3.Schema) string {
	if s == nil || s.Type == nil || len(*s.Type) == 0 {
		return "object"
	}
	if s.Type.Is("array") && s.Items != nil {
		return "array[" + schemaTypeFromRef(s.Items) + "]"
	}
	return (*s.Type)[0]
}

func enumList(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("`%v`", v)
	}
	return strings.Join(parts, ", ")
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func slug(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = strings.NewReplacer(" ", "-", "/", "-", "_", "-", ".", "-").Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

const generatedHeader = "<!-- Code generated by sqleval docs. DO NOT EDIT. -->\n\n"

func cleanInline(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func tableSafe(value string) string {
	value = strings.ReplaceAll(cleanInline(value), "|", "\\|")
	if value == "" {
		return "-"
	}
	return value
}
