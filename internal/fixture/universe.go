package fixture

import (
	"strings"

	"github.com/hashicorp/go-set/v3"

	"jopa/internal/diag"
	"jopa/internal/source"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// buildUniverse registers every class first so headers and members can
// refer to classes declared later in the file.
func (l *loader) buildUniverse(docs []classDoc) {
	for i := range docs {
		l.declareClass(&docs[i], types.NoTypeID)
	}
	for _, c := range l.classes {
		l.declareTypeParams(c)
	}
	for _, c := range l.classes {
		l.resolveHeader(c)
	}
	l.breakCycles()
	for _, c := range l.classes {
		l.declareMembers(c)
	}
}

var classKinds = map[string]types.ClassFlags{
	"":          0,
	"class":     0,
	"interface": types.ClassInterface | types.ClassAbstract,
	"enum":      types.ClassEnum | types.ClassFinal,
}

var classFlagNames = map[string]types.ClassFlags{
	"abstract":   types.ClassAbstract,
	"final":      types.ClassFinal,
	"static":     types.ClassStatic,
	"deprecated": types.ClassDeprecated,
	"synthetic":  types.ClassSynthetic,
	"local":      types.ClassLocal,
	"anonymous":  types.ClassAnonymous,
}

// splitClassName works out package, simple name and enclosing class of a
// top-level entry. "p.Outer.Inner" nests when p.Outer is already declared;
// "p.Outer$1Local" names a local class of p.Outer.
func (l *loader) splitClassName(name string) (pkg, simple string, outer types.TypeID, local bool, ok bool) {
	if i := strings.LastIndexByte(name, '$'); i > 0 {
		host, found := l.types.ClassByName(name[:i])
		if !found {
			return "", "", types.NoTypeID, false, false
		}
		return l.types.Package(host), name[i+1:], host, true, true
	}
	for i := strings.LastIndexByte(name, '.'); i > 0; i = strings.LastIndexByte(name[:i], '.') {
		if host, found := l.types.ClassByName(name[:i]); found {
			return l.types.Package(host), name[i+1:], host, false, true
		}
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i], name[i+1:], types.NoTypeID, false, true
	}
	return "", name, types.NoTypeID, false, true
}

func (l *loader) declareClass(doc *classDoc, outer types.TypeID) {
	if doc.Name == "" {
		l.errorf(diag.PrjBadMember, doc.Pos, 1, "class declaration needs a name")
		return
	}
	info := types.ClassInfo{Outer: outer, Decl: l.span(doc.Pos, len(doc.Name))}
	if outer.IsValid() {
		if strings.ContainsAny(doc.Name, ".$") {
			l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "member class %s must use a simple name", doc.Name)
			return
		}
		info.Name = doc.Name
		info.Package = l.types.Package(outer)
	} else {
		pkg, simple, host, local, ok := l.splitClassName(doc.Name)
		if !ok {
			l.errorf(diag.PrjUnknownType, doc.Pos, len(doc.Name), "enclosing class of %s is not declared", doc.Name)
			return
		}
		info.Package, info.Name, info.Outer = pkg, simple, host
		if local {
			info.Flags |= types.ClassLocal
		}
	}
	kind, ok := classKinds[doc.Kind]
	if !ok {
		l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "unknown class kind %q", doc.Kind)
	}
	info.Flags |= kind
	for _, f := range doc.Flags {
		flag, ok := classFlagNames[f]
		if !ok {
			l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "unknown class flag %q on %s", f, doc.Name)
			continue
		}
		info.Flags |= flag
	}
	access, ok := types.ParseAccess(doc.Access)
	if !ok {
		l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "unknown access %q on %s", doc.Access, doc.Name)
	}
	info.Access = access

	id, err := l.types.RegisterClass(info)
	if err != nil {
		diag.ReportError(l.reporter, diag.PrjDuplicateClass, info.Decl, err.Error()).
			WithNote(l.declSpan(id), "previous declaration").
			Emit()
		return
	}
	l.classes = append(l.classes, &declared{id: id, doc: doc})
	for i := range doc.Classes {
		l.declareClass(&doc.Classes[i], id)
	}
}

func (l *loader) declSpan(id types.TypeID) (sp source.Span) {
	if info, ok := l.types.ClassInfo(id); ok {
		sp = info.Decl
	}
	return sp
}

func (l *loader) declareTypeParams(c *declared) {
	info, _ := l.types.ClassInfo(c.id)
	for i, src := range c.doc.TypeParams {
		decl, err := parseTypeParamDecl(src)
		if err != nil {
			l.typeError(err, src, c.doc.Pos)
			continue
		}
		idx := uint32(i) // #nosec G115 -- bounded by document size
		tp := l.types.RegisterTypeParam(types.TypeParamInfo{Name: decl.Name, Index: idx, Owner: c.id})
		info, _ = l.types.ClassInfo(c.id)
		info.TypeParams = append(info.TypeParams, tp)
		c.params = append(c.params, decl)
	}
}

// resolveHeader resolves type parameter bounds, the superclass and the
// superinterfaces of one class.
func (l *loader) resolveHeader(c *declared) {
	sc := scope{class: c.id}
	doc := c.doc
	info, _ := l.types.ClassInfo(c.id)
	for i, decl := range c.params {
		if len(decl.Bounds) == 0 {
			continue
		}
		bounds := make([]types.TypeID, 0, len(decl.Bounds))
		for _, b := range decl.Bounds {
			id, err := l.resolveType(b, sc)
			if err != nil {
				l.typeError(err, b.String(), doc.Pos)
				continue
			}
			bounds = append(bounds, id)
		}
		l.types.SetTypeParamBounds(info.TypeParams[i], bounds)
	}

	var super types.TypeID
	switch {
	case info.IsInterface():
	case info.Is(types.ClassEnum):
		super = l.types.Parameterized(l.builtins.Enum, []types.TypeArg{types.Exact(c.id)})
	default:
		super = l.builtins.Object
	}
	if doc.Super != "" {
		if id, ok := l.classOf(doc.Super, sc, doc.Pos); ok {
			switch si, _ := l.types.ClassInfo(id); {
			case info.IsInterface():
				l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "interface %s cannot extend class %s; list it under interfaces", doc.Name, doc.Super)
			case si.IsInterface():
				l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "%s cannot extend interface %s", doc.Name, doc.Super)
			case si.Is(types.ClassFinal):
				l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "%s cannot extend final class %s", doc.Name, doc.Super)
			default:
				super = id
			}
		}
	}
	info, _ = l.types.ClassInfo(c.id)
	info.Super = super

	ifaces := make([]types.TypeID, 0, len(doc.Interfaces))
	for _, src := range doc.Interfaces {
		id, ok := l.classOf(src, sc, doc.Pos)
		if !ok {
			continue
		}
		if si, _ := l.types.ClassInfo(id); !si.IsInterface() {
			l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "%s is not an interface", src)
			continue
		}
		ifaces = append(ifaces, id)
	}
	info, _ = l.types.ClassInfo(c.id)
	info.Interfaces = ifaces
}

// breakCycles reports every class that reaches itself through its
// supertypes and cuts its header back to java.lang.Object.
func (l *loader) breakCycles() {
	var cyclic []*declared
	for _, c := range l.classes {
		if l.inheritsFrom(c.id, c.id) {
			cyclic = append(cyclic, c)
		}
	}
	for _, c := range cyclic {
		info, _ := l.types.ClassInfo(c.id)
		l.errorf(diag.PrjCyclicHierarchy, c.doc.Pos, len(c.doc.Name), "cyclic inheritance involving %s", l.types.QualifiedName(c.id))
		info.Super = types.NoTypeID
		if !info.IsInterface() {
			info.Super = l.builtins.Object
		}
		info.Interfaces = nil
	}
}

// inheritsFrom walks the supertype graph of from looking for target.
func (l *loader) inheritsFrom(from, target types.TypeID) bool {
	seen := set.New[types.TypeID](8)
	stack := l.types.DirectSupertypes(from)
	for len(stack) > 0 {
		next := l.types.ClassOf(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		if next == target {
			return true
		}
		if !seen.Insert(next) {
			continue
		}
		stack = append(stack, l.types.DirectSupertypes(next)...)
	}
	return false
}

var methodFlagNames = map[string]symbols.MethodFlags{
	"static":     symbols.MethodStatic,
	"abstract":   symbols.MethodAbstract,
	"final":      symbols.MethodFinal,
	"synthetic":  symbols.MethodSynthetic,
	"bridge":     symbols.MethodBridge | symbols.MethodSynthetic,
	"deprecated": symbols.MethodDeprecated,
	"default":    symbols.MethodDefault,
}

// rawSignature is the unresolved text of a callable, completed on first
// use by signatureResolver.
type rawSignature struct {
	doc   *methodDoc
	owner types.TypeID
}

func (l *loader) declareMembers(c *declared) {
	info, _ := l.types.ClassInfo(c.id)
	doc := c.doc
	sc := scope{class: c.id}

	for i := range doc.Fields {
		l.declareField(c.id, info, &doc.Fields[i], sc)
	}
	for i := range doc.Methods {
		l.declareMethod(c.id, info, &doc.Methods[i], symbols.MethodOrdinary)
	}
	if info.IsInterface() && len(doc.Constructors) > 0 {
		l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "interface %s cannot declare constructors", doc.Name)
	} else {
		for i := range doc.Constructors {
			l.declareMethod(c.id, info, &doc.Constructors[i], symbols.MethodConstructor)
		}
	}
	if !info.IsInterface() && len(doc.Constructors) == 0 {
		access := info.Access
		if info.Is(types.ClassEnum) {
			access = types.AccessPrivate
		}
		l.table.AddMethod(symbols.Method{
			Owner:  c.id,
			Kind:   symbols.MethodConstructor,
			Access: access,
			Return: l.builtins.Void,
			Decl:   info.Decl,
			Sig:    symbols.SigResolved,
		})
	}
	if info.Is(types.ClassEnum) {
		l.table.AddEnumSupport(c.id)
	}
	l.declareCaptures(c, info, sc)
}

func (l *loader) declareField(owner types.TypeID, info *types.ClassInfo, fd *fieldDoc, sc scope) {
	if fd.Name == "" || fd.Type == "" {
		l.errorf(diag.PrjBadMember, fd.Pos, 1, "field needs a name and a type")
		return
	}
	access, ok := types.ParseAccess(fd.Access)
	if !ok {
		l.errorf(diag.PrjBadMember, fd.Pos, len(fd.Name), "unknown access %q on field %s", fd.Access, fd.Name)
	}
	var flags symbols.FieldFlags
	if fd.Static {
		flags |= symbols.FieldStatic
	}
	if fd.Final {
		flags |= symbols.FieldFinal
	}
	if info.IsInterface() {
		access = types.AccessPublic
		flags |= symbols.FieldStatic | symbols.FieldFinal
	}
	l.table.AddField(symbols.Field{
		Name:   fd.Name,
		Owner:  owner,
		Type:   l.typeOf(fd.Type, sc, fd.Pos),
		Access: access,
		Flags:  flags,
	})
}

func (l *loader) declareMethod(owner types.TypeID, info *types.ClassInfo, md *methodDoc, kind symbols.MethodKind) {
	name := md.Name
	if kind == symbols.MethodConstructor {
		name = info.Name
	} else if name == "" {
		l.errorf(diag.PrjBadMember, md.Pos, 1, "method needs a name")
		return
	}
	access, ok := types.ParseAccess(md.Access)
	if !ok {
		l.errorf(diag.PrjBadMember, md.Pos, len(name), "unknown access %q on %s", md.Access, name)
	}
	var flags symbols.MethodFlags
	for _, f := range md.Flags {
		flag, ok := methodFlagNames[f]
		if !ok || (kind == symbols.MethodConstructor && flag&(symbols.MethodStatic|symbols.MethodAbstract) != 0) {
			l.errorf(diag.PrjBadMember, md.Pos, len(name), "flag %q not allowed on %s", f, name)
			continue
		}
		flags |= flag
	}
	if n := len(md.Params); n > 0 && strings.HasSuffix(strings.TrimSpace(md.Params[n-1]), "...") {
		flags |= symbols.MethodVarargs
	}
	if kind == symbols.MethodConstructor && info.Is(types.ClassEnum) && md.Access == "" {
		access = types.AccessPrivate
	}
	if info.IsInterface() {
		access = types.AccessPublic
		if flags&(symbols.MethodStatic|symbols.MethodDefault) == 0 {
			flags |= symbols.MethodAbstract
		}
	}
	if info.Is(types.ClassDeprecated) {
		flags |= symbols.MethodDeprecated
	}
	l.table.AddMethod(symbols.Method{
		Name:   md.Name,
		Owner:  owner,
		Kind:   kind,
		Access: access,
		Flags:  flags,
		Decl:   l.span(md.Pos, len(name)),
		Sig:    symbols.SigPending,
		Raw:    &rawSignature{doc: md, owner: owner},
	})
}

// declareCaptures records the locals a local class body is known to use.
func (l *loader) declareCaptures(c *declared, info *types.ClassInfo, sc scope) {
	doc := c.doc
	if len(doc.Captures) == 0 {
		return
	}
	if !info.Is(types.ClassLocal) {
		l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "%s is not a local class and cannot capture locals", doc.Name)
		return
	}
	for _, src := range doc.Captures {
		te, name, err := parseLocalDecl(src)
		if err != nil {
			l.typeError(err, src, doc.Pos)
			continue
		}
		typ, err := l.resolveType(te, sc)
		if err != nil {
			l.typeError(err, src, doc.Pos)
			typ = l.builtins.Bad
		}
		if _, dup := l.table.CaptureOf(c.id, name); dup {
			diag.ReportWarning(l.reporter, diag.ResDuplicateCapture, l.span(doc.Pos, len(doc.Name)),
				"local variable "+name+" is already captured by "+l.types.QualifiedName(c.id)).Emit()
			continue
		}
		if _, err := l.table.AddCapture(c.id, name, typ); err != nil {
			l.errorf(diag.PrjBadMember, doc.Pos, len(doc.Name), "capture %s: %v", name, err)
		}
	}
}
