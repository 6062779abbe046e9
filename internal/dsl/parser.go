package dsl

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	entityRe   = regexp.MustCompile(`^entity\s+(\w+)\s*:(.*)$`)
	viewRe     = regexp.MustCompile(`^view\s+(\w+)\s*:(.*)$`)
	fieldRe    = regexp.MustCompile(`^\s*([\w_]+):\s*([^\s#]+)(.*)$`)
	listTypeRe = regexp.MustCompile(`^(choice|choices)\[(.*)\]$`)
	catalogRe  = regexp.MustCompile(`^(choice|choices)\(([\w.-]+)\)$`)
	refRe      = regexp.MustCompile(`^(ref|refs)\[(\w+)\.(\w+)\]$`)
)

// ChoiceSource provides named choice lists, e.g. enum catalogs.
type ChoiceSource interface {
	Choices(name string) ([]Choice, bool)
}

// LoadOptions configures how definitions become entities.
type LoadOptions struct {
	// Transforms resolves map= names. Nil means DefaultTransforms().
	Transforms *Transforms
	// Choices resolves choice(name) types. Nil rejects them.
	Choices ChoiceSource
	// Namer names fields declared without one. Nil means the package default.
	Namer Namer
}

type entityDef struct {
	name   string
	pos    string
	opts   map[string]string
	fields []fieldDef
	views  []viewDef
}

type fieldDef struct {
	name    string
	rawType string
	pos     string
	opts    map[string]string
}

type viewDef struct {
	typ    ViewType
	pos    string
	fields []string
	opts   map[string]string
}

// splitOptionTokens splits `k=v k2='v 2' pattern=^[A-Z0-9 _-]+$` into tokens.
// Spaces, tabs and commas separate tokens unless inside quotes, [...] or {...}.
func splitOptionTokens(s string) []string {
	var out []string
	var buf []rune
	inSingle, inDouble := false, false
	bracketDepth, braceDepth := 0, 0

	flush := func() {
		if len(buf) > 0 {
			out = append(out, string(buf))
			buf = buf[:0]
		}
	}

	for _, r := range s {
		switch r {
		case '\'':
			if !inDouble && bracketDepth == 0 && braceDepth == 0 {
				inSingle = !inSingle
			}
			buf = append(buf, r)
		case '"':
			if !inSingle && bracketDepth == 0 && braceDepth == 0 {
				inDouble = !inDouble
			}
			buf = append(buf, r)
		case '[':
			if !inSingle && !inDouble {
				bracketDepth++
			}
			buf = append(buf, r)
		case ']':
			if !inSingle && !inDouble && bracketDepth > 0 {
				bracketDepth--
			}
			buf = append(buf, r)
		case '{':
			if !inSingle && !inDouble {
				braceDepth++
			}
			buf = append(buf, r)
		case '}':
			if !inSingle && !inDouble && braceDepth > 0 {
				braceDepth--
			}
			buf = append(buf, r)
		default:
			if (r == ' ' || r == '\t' || r == ',') && !inSingle && !inDouble && bracketDepth == 0 && braceDepth == 0 {
				flush()
				continue
			}
			buf = append(buf, r)
		}
	}
	flush()
	return out
}

// parseOptions turns tokens into a lower-cased key -> value map.
// A bare flag means "true"; surrounding quotes are removed.
func parseOptions(raw string) map[string]string {
	opts := map[string]string{}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(raw), "options:") {
		raw = strings.TrimSpace(raw[len("options:"):])
	}
	for _, tok := range splitOptionTokens(raw) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			opts[strings.ToLower(tok)] = "true"
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			opts[k] = unquote(strings.TrimSpace(v))
		}
	}
	return opts
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// stripComment cuts a trailing "# ..." that is not inside quotes.
func stripComment(s string) string {
	inSingle, inDouble := false, false
	for i, r := range s {
		switch r {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '#':
			if !inSingle && !inDouble {
				return s[:i]
			}
		}
	}
	return s
}

// parseDefs reads entity definitions from r; name is used in error positions.
func parseDefs(r io.Reader, name string) ([]*entityDef, error) {
	var defs []*entityDef
	var current *entityDef

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		pos := fmt.Sprintf("%s:%d", name, lineNo)
		line := strings.TrimSpace(stripComment(scanner.Text()))
		if line == "" {
			continue
		}

		// entity <name>: [options]
		if m := entityRe.FindStringSubmatch(line); m != nil {
			current = &entityDef{name: m[1], pos: pos, opts: parseOptions(m[2])}
			defs = append(defs, current)
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("%s: %q outside of an entity block", pos, line)
		}

		// view <type>: f1, f2 [; options]
		if m := viewRe.FindStringSubmatch(line); m != nil {
			t, ok := ParseViewType(m[1])
			if !ok {
				return nil, fmt.Errorf("%s: unknown view type %q", pos, m[1])
			}
			list, optsRaw, _ := strings.Cut(m[2], ";")
			vd := viewDef{typ: t, pos: pos, opts: parseOptions(optsRaw)}
			for _, n := range strings.Split(list, ",") {
				if n = strings.TrimSpace(n); n != "" {
					vd.fields = append(vd.fields, n)
				}
			}
			current.views = append(current.views, vd)
			continue
		}

		m := fieldRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("%s: cannot parse %q", pos, line)
		}
		rawType, tail := m[2], m[3]
		// glue types with spaces inside brackets: choice[a, b]
		for _, pair := range [][2]string{{"[", "]"}, {"(", ")"}} {
			if strings.Contains(rawType, pair[0]) && !strings.Contains(rawType, pair[1]) {
				if idx := strings.Index(tail, pair[1]); idx >= 0 {
					rawType += tail[:idx+1]
					tail = tail[idx+1:]
				}
			}
		}
		current.fields = append(current.fields, fieldDef{
			name:    m[1],
			rawType: strings.ReplaceAll(rawType, " ", ""),
			pos:     pos,
			opts:    parseOptions(tail),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return defs, nil
}

// Parse reads definitions from r and builds entities.
func Parse(r io.Reader, name string, opts LoadOptions) ([]*Entity, error) {
	defs, err := parseDefs(r, name)
	if err != nil {
		return nil, err
	}
	return build(defs, opts)
}

// LoadEntities reads one .dsl file.
func LoadEntities(path string, opts LoadOptions) ([]*Entity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, path, opts)
}

// LoadAllEntities reads every .dsl file under root. References may point
// across files; entity names must be unique over the whole tree.
func LoadAllEntities(root string, opts LoadOptions) ([]*Entity, error) {
	var defs []*entityDef

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".dsl") {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		fileDefs, err := parseDefs(f, path)
		if err != nil {
			return err
		}
		defs = append(defs, fileDefs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return build(defs, opts)
}

type builder struct {
	opts     LoadOptions
	defs     map[string]*entityDef
	entities map[string]*Entity
}

func build(defs []*entityDef, opts LoadOptions) ([]*Entity, error) {
	if opts.Transforms == nil {
		opts.Transforms = DefaultTransforms()
	}
	if opts.Namer == nil {
		opts.Namer = defaultNamer
	}
	b := &builder{
		opts:     opts,
		defs:     make(map[string]*entityDef, len(defs)),
		entities: make(map[string]*Entity, len(defs)),
	}

	out := make([]*Entity, 0, len(defs))
	for _, d := range defs {
		if prev, exists := b.defs[d.name]; exists {
			return nil, fmt.Errorf("%s: duplicate entity %q (first declared at %s)", d.pos, d.name, prev.pos)
		}
		b.defs[d.name] = d
		e := NewEntity(d.name)
		if l, ok := d.opts["label"]; ok {
			e.SetLabel(l)
		}
		if ro, ok := d.opts["readonly"]; ok {
			e.SetReadOnly(ruleBool(ro))
		}
		b.entities[d.name] = e
		out = append(out, e)
	}

	for _, d := range defs {
		if err := b.buildEntity(d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (b *builder) buildEntity(d *entityDef) error {
	e := b.entities[d.name]

	byName := make(map[string]fieldDef, len(d.fields))
	for _, fd := range d.fields {
		if _, dup := byName[fd.name]; dup {
			return fmt.Errorf("%s: duplicate field %q in entity %q", fd.pos, fd.name, d.name)
		}
		byName[fd.name] = fd
		if ruleBool(fd.opts["identifier"]) {
			f, err := b.buildField(fd)
			if err != nil {
				return err
			}
			e.SetIdentifier(f.field())
		}
	}

	views := d.views
	if len(views) == 0 {
		all := make([]string, 0, len(d.fields))
		for _, fd := range d.fields {
			all = append(all, fd.name)
		}
		views = []viewDef{{typ: ViewList, pos: d.pos, fields: all, opts: map[string]string{}}}
	}

	for _, vd := range views {
		if e.HasView(vd.typ) {
			return fmt.Errorf("%s: view %q declared twice in entity %q", vd.pos, vd.typ, d.name)
		}
		v := e.View(vd.typ)
		applyViewOptions(v, vd.opts)
		for _, name := range vd.fields {
			fd, ok := byName[name]
			if !ok {
				return fmt.Errorf("%s: view %q of %q names unknown field %q", vd.pos, vd.typ, d.name, name)
			}
			// every view gets its own instances so orders do not leak between views
			f, err := b.buildField(fd)
			if err != nil {
				return err
			}
			v.AddField(f)
		}
	}
	return nil
}

func applyViewOptions(v *View, opts map[string]string) {
	for k, val := range opts {
		switch k {
		case "name":
			v.SetName(val)
		case "title":
			v.SetTitle(val)
		case "description":
			v.SetDescription(val)
		case "perpage":
			if n, err := strconv.Atoi(val); err == nil {
				v.SetPerPage(n)
			}
		case "sort":
			// sort=title or sort=-title
			if name, desc := strings.CutPrefix(val, "-"); desc {
				v.SetSortField(name).SetSortDir("DESC")
			} else {
				v.SetSortField(val).SetSortDir("ASC")
			}
		case "actions":
			v.SetActions(strings.Split(val, "|"))
		}
	}
}

func (b *builder) buildField(fd fieldDef) (Fielder, error) {
	namer := WithNamer(b.opts.Namer)
	var fl Fielder
	var f *Field

	switch {
	case refRe.MatchString(fd.rawType):
		m := refRe.FindStringSubmatch(fd.rawType)
		target, ok := b.entities[m[2]]
		if !ok {
			return nil, fmt.Errorf("%s: field %q references unknown entity %q", fd.pos, fd.name, m[2])
		}
		if !b.hasField(m[2], m[3]) {
			return nil, fmt.Errorf("%s: field %q references unknown field %s.%s", fd.pos, fd.name, m[2], m[3])
		}
		targetField := NewField(m[3], namer)
		if m[1] == "ref" {
			r := NewReference(fd.name, namer).SetTargetEntity(target).SetTargetField(targetField)
			fl, f = r, r.Field
		} else {
			r := NewReferenceMany(fd.name, namer).SetTargetEntity(target).SetTargetField(targetField)
			fl, f = r, r.Field
		}

	case listTypeRe.MatchString(fd.rawType):
		m := listTypeRe.FindStringSubmatch(fd.rawType)
		f = NewField(fd.name, namer).SetType(m[1])
		var choices []Choice
		for _, p := range strings.Split(m[2], ",") {
			if s := strings.Trim(strings.TrimSpace(p), `"'`); s != "" {
				choices = append(choices, Choice{Value: s, Label: s})
			}
		}
		f.SetChoices(choices)
		fl = f

	case catalogRe.MatchString(fd.rawType):
		m := catalogRe.FindStringSubmatch(fd.rawType)
		if b.opts.Choices == nil {
			return nil, fmt.Errorf("%s: field %q uses catalog %q but no catalogs are loaded", fd.pos, fd.name, m[2])
		}
		choices, ok := b.opts.Choices.Choices(m[2])
		if !ok {
			return nil, fmt.Errorf("%s: field %q uses unknown catalog %q", fd.pos, fd.name, m[2])
		}
		f = NewField(fd.name, namer).SetType(m[1]).SetChoices(choices)
		fl = f

	default:
		f = NewField(fd.name, namer).SetType(fd.rawType)
		fl = f
	}

	if err := b.applyFieldOptions(f, fd); err != nil {
		return nil, err
	}
	return fl, nil
}

func (b *builder) hasField(entity, field string) bool {
	for _, fd := range b.defs[entity].fields {
		if fd.name == field {
			return true
		}
	}
	return false
}

func (b *builder) applyFieldOptions(f *Field, fd fieldDef) error {
	upload := f.UploadInformation()
	attrs := map[string]any{}

	for k, v := range fd.opts {
		switch k {
		case "label":
			f.SetLabel(v)
		case "identifier":
			f.SetIdentifier(ruleBool(v))
		case "detail":
			f.SetDetailLink(ruleBool(v))
		case "route":
			f.SetDetailLinkRoute(v)
		case "editable":
			f.SetEditable(ruleBool(v))
		case "list":
			f.SetList(ruleBool(v))
		case "dashboard":
			f.SetDashboard(ruleBool(v))
		case "format":
			f.SetFormat(v)
		case "order":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: field %q: order must be an integer, got %q", fd.pos, fd.name, v)
			}
			f.SetOrder(n)
		case "css":
			if parts := strings.Split(v, "|"); len(parts) > 1 {
				f.SetCSSClasses(parts)
			} else {
				f.SetCSSClasses(v)
			}
		case "template":
			f.SetTemplate(v)
		case "default":
			f.SetDefaultValue(v)
		case "upload":
			upload.URL = v
		case "accept":
			upload.Accept = v
		case "map":
			for _, name := range strings.Split(v, "|") {
				name = strings.TrimSpace(name)
				fn, ok := b.opts.Transforms.Resolve(name)
				if !ok {
					return fmt.Errorf("%s: field %q: unknown transform %q", fd.pos, fd.name, name)
				}
				f.Map(fn)
			}
		case "required":
			f.SetValidation(map[string]any{"required": ruleBool(v)})
		case "minlength", "maxlength":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: field %q: %s must be an integer, got %q", fd.pos, fd.name, k, v)
			}
			f.SetValidation(map[string]any{k: n})
		case "pattern":
			if _, err := regexp.Compile(v); err != nil {
				return fmt.Errorf("%s: field %q: invalid pattern: %w", fd.pos, fd.name, err)
			}
			f.SetValidation(map[string]any{"pattern": v})
		default:
			attrs[k] = v
		}
	}

	f.SetUploadInformation(upload)
	if len(attrs) > 0 {
		f.SetAttributes(attrs)
	}
	return nil
}
