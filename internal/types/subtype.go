package types

// DirectSupertypes lists the superclass followed by the interfaces, each
// possibly parameterized.
func (in *Interner) DirectSupertypes(id TypeID) []TypeID {
	info, ok := in.ClassInfo(id)
	if !ok {
		return nil
	}
	out := make([]TypeID, 0, 1+len(info.Interfaces))
	if info.Super.IsValid() {
		out = append(out, info.Super)
	}
	return append(out, info.Interfaces...)
}

// SuperClass returns the erased superclass of a declared type.
func (in *Interner) SuperClass(id TypeID) TypeID {
	info, ok := in.ClassInfo(id)
	if !ok {
		return NoTypeID
	}
	return in.ClassOf(info.Super)
}

// IsSubclass reports whether the declared type sub is sup or inherits from
// it through superclasses or interfaces. Every class and interface is a
// subclass of java.lang.Object. Cyclic hierarchies terminate.
func (in *Interner) IsSubclass(sub, sup TypeID) bool {
	sub, sup = in.ClassOf(sub), in.ClassOf(sup)
	if !sub.IsValid() || !sup.IsValid() {
		return false
	}
	if sub == sup || sup == in.builtins.Object {
		return true
	}
	seen := map[TypeID]struct{}{sub: {}}
	work := []TypeID{sub}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		for _, st := range in.DirectSupertypes(cur) {
			c := in.ClassOf(st)
			if c == sup {
				return true
			}
			if _, dup := seen[c]; dup || !c.IsValid() {
				continue
			}
			seen[c] = struct{}{}
			work = append(work, c)
		}
	}
	return false
}

// IsSubtype is erased reference subtyping extended to the null type,
// arrays and primitives (identity only). The bad type is a subtype of and
// a supertype of everything.
func (in *Interner) IsSubtype(s, t TypeID) bool {
	if s == t {
		return true
	}
	ks, kt := in.Kind(s), in.Kind(t)
	switch {
	case ks == KindBad || kt == KindBad:
		return true
	case ks == KindNull:
		return kt.IsReference()
	case ks.IsPrimitive() || kt.IsPrimitive() || ks == KindVoid || kt == KindVoid:
		return false
	}
	s, t = in.Erasure(s), in.Erasure(t)
	if s == t {
		return true
	}
	if in.Kind(s) != KindArray {
		if in.Kind(t) == KindArray {
			return false
		}
		return in.IsSubclass(s, t)
	}
	b := in.builtins
	if t == b.Object || t == b.Cloneable || t == b.Serializable {
		return true
	}
	if in.Kind(t) != KindArray {
		return false
	}
	return in.IsSubtype(in.Component(s), in.Component(t))
}

// Erasure drops type arguments; type variables erase to their first bound.
func (in *Interner) Erasure(id TypeID) TypeID {
	return in.erasure(id, 0)
}

func (in *Interner) erasure(id TypeID, depth int) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindParameterized:
		return tt.Elem
	case KindArray:
		elem := in.erasure(tt.Elem, depth+1)
		if elem == tt.Elem {
			return id
		}
		return in.Array(elem, tt.Count)
	case KindTypeParam:
		info := in.typeParam(id)
		if info == nil || len(info.Bounds) == 0 || depth > 16 {
			return in.builtins.Object
		}
		return in.erasure(info.Bounds[0], depth+1)
	}
	return id
}

// IsWidening reports primitive widening conversion from -> to (identity
// included).
func (in *Interner) IsWidening(from, to TypeID) bool {
	if from == to {
		return in.IsPrimitive(from)
	}
	kf, kt := in.Kind(from), in.Kind(to)
	switch kf {
	case KindByte:
		return kt == KindShort || kt == KindInt || kt == KindLong || kt == KindFloat || kt == KindDouble
	case KindShort, KindChar:
		return kt == KindInt || kt == KindLong || kt == KindFloat || kt == KindDouble
	case KindInt:
		return kt == KindLong || kt == KindFloat || kt == KindDouble
	case KindLong:
		return kt == KindFloat || kt == KindDouble
	case KindFloat:
		return kt == KindDouble
	}
	return false
}

// Subst replaces the type variables params[i] inside t with args[i]. A
// bare variable mapped to a wildcard becomes its upper bound, or the
// variable's erasure when none exists.
func (in *Interner) Subst(t TypeID, params []TypeID, args []TypeArg) TypeID {
	if len(params) == 0 || len(args) == 0 {
		return t
	}
	return in.subst(t, params, args, 0)
}

func (in *Interner) subst(t TypeID, params []TypeID, args []TypeArg, depth int) TypeID {
	tt, ok := in.Lookup(t)
	if !ok || depth > 32 {
		return t
	}
	switch tt.Kind {
	case KindTypeParam:
		for i, p := range params {
			if p == t && i < len(args) {
				return in.argUpper(args[i], t)
			}
		}
	case KindArray:
		elem := in.subst(tt.Elem, params, args, depth+1)
		if elem != tt.Elem {
			return in.Array(elem, tt.Count)
		}
	case KindParameterized:
		old := in.argLists[tt.Payload]
		next := make([]TypeArg, len(old))
		changed := false
		for i, a := range old {
			next[i] = in.substArg(a, params, args, depth+1)
			changed = changed || next[i] != a
		}
		if changed {
			return in.Parameterized(tt.Elem, next)
		}
	}
	return t
}

func (in *Interner) substArg(a TypeArg, params []TypeID, args []TypeArg, depth int) TypeArg {
	if a.Wildcard == WildcardUnbounded {
		return a
	}
	if a.Wildcard == WildcardNone && in.Kind(a.Type) == KindTypeParam {
		for i, p := range params {
			if p == a.Type && i < len(args) {
				return args[i]
			}
		}
	}
	a.Type = in.subst(a.Type, params, args, depth)
	return a
}

// argUpper picks the type a bare variable stands for under arg.
func (in *Interner) argUpper(a TypeArg, param TypeID) TypeID {
	switch a.Wildcard {
	case WildcardNone, WildcardExtends:
		if a.Type.IsValid() {
			return a.Type
		}
	}
	return in.Erasure(param)
}

// MentionsParam reports whether t contains the type variable p.
func (in *Interner) MentionsParam(t, p TypeID) bool {
	return in.mentions(t, p, 0)
}

func (in *Interner) mentions(t, p TypeID, depth int) bool {
	if t == p {
		return true
	}
	tt, ok := in.Lookup(t)
	if !ok || depth > 32 {
		return false
	}
	switch tt.Kind {
	case KindArray:
		return in.mentions(tt.Elem, p, depth+1)
	case KindParameterized:
		for _, a := range in.argLists[tt.Payload] {
			if a.Type.IsValid() && in.mentions(a.Type, p, depth+1) {
				return true
			}
		}
	}
	return false
}
