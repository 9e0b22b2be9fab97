// FILE: lixenwraith/reflector/cache.go
package reflector

import (
	"reflect"
	"strings"
)

// TypeDescriptor is the cached shape of a type.
type TypeDescriptor struct {
	Type         reflect.Type
	Kind         Kind
	IsEnum       bool
	IsValueType  bool
	IsNullable   bool
	IsCollection bool
	IsMap        bool
	// Fields and Properties are base-first
	Fields     []*Member
	Properties []*Member
	// All holds every property candidate, excluded ones flagged
	All []*Member
}

// Fields returns the instance fields of t. With baseFirst, members lifted from embedded
// structs come before the ones t declares itself. A name declared closer to t hides the
// same name further up. Fields tagged "-" are skipped.
func (r *Reflector) Fields(t reflect.Type, baseFirst bool) []*Member {
	return r.members(t, FieldMember, baseFirst)
}

// Properties returns the public data members of t, ordered like Fields. Unexported fields
// appear only when tagged with the include option; members tagged "-" under the reflector,
// json or xml keys are skipped.
func (r *Reflector) Properties(t reflect.Type, baseFirst bool) []*Member {
	return r.members(t, PropertyMember, baseFirst)
}

// Property finds a property by Go name or alias.
func (r *Reflector) Property(t reflect.Type, name string, ignoreCase bool) (*Member, bool) {
	return lookup(r.Properties(t, true), name, ignoreCase)
}

// Field finds a field by Go name or alias.
func (r *Reflector) Field(t reflect.Type, name string, ignoreCase bool) (*Member, bool) {
	return lookup(r.Fields(t, true), name, ignoreCase)
}

func lookup(list []*Member, name string, ignoreCase bool) (*Member, bool) {
	for _, m := range list {
		if m.Name == name || (m.Alias != "" && m.Alias == name) {
			return m, true
		}
	}
	if ignoreCase {
		for _, m := range list {
			if strings.EqualFold(m.Name, name) || (m.Alias != "" && strings.EqualFold(m.Alias, name)) {
				return m, true
			}
		}
	}
	return nil, false
}

// Describe returns the cached descriptor of t.
func (r *Reflector) Describe(t reflect.Type) *TypeDescriptor {
	if t == nil {
		return nil
	}
	if d, ok := r.descriptors.Load(t); ok {
		return d.(*TypeDescriptor)
	}

	k := r.KindOf(t)
	d := &TypeDescriptor{
		Type:         t,
		Kind:         k,
		IsEnum:       k == KindEnum,
		IsNullable:   k == KindNullable,
		IsCollection: k == KindSlice,
		IsMap:        k == KindMap,
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
	default:
		d.IsValueType = true
	}
	if st := indirect(t); st.Kind() == reflect.Struct {
		d.Fields = r.Fields(st, true)
		d.Properties = r.Properties(st, true)
		d.All = r.collect(st, PropertyMember, true)
	}

	r.descriptors.Store(t, d)
	return d
}

// members serves one cache slot. Concurrent first calls may both compute; the lists are
// identical so whichever store lands last is kept.
func (r *Reflector) members(t reflect.Type, kind MemberKind, baseFirst bool) []*Member {
	t = indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	slot := r.slot(kind, baseFirst)
	if v, ok := slot.Load(t); ok {
		return v.([]*Member)
	}

	all := r.collect(t, kind, baseFirst)
	list := make([]*Member, 0, len(all))
	for _, m := range all {
		if !m.Excluded {
			list = append(list, m)
		}
	}

	slot.Store(t, list)
	r.logger.Debug("reflector: cached %d %s of %s (base first: %t)", len(list), kind, t, baseFirst)
	return list
}

// collect walks t and its embedded structs, returning every candidate with exclusion
// computed. Names declared on t hide lifted names, excluded or not.
func (r *Reflector) collect(t reflect.Type, kind MemberKind, baseFirst bool) []*Member {
	return r.walk(t, kind, baseFirst, make(map[reflect.Type]bool))
}

// walk is collect with the embedding path so far. A type already on the path, as in
// struct{ *Node }, contributes nothing the second time.
func (r *Reflector) walk(t reflect.Type, kind MemberKind, baseFirst bool, path map[reflect.Type]bool) []*Member {
	path[t] = true
	defer delete(path, t)

	var own, inherited []*Member
	seen := make(map[string]bool)
	var bases []int

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if r.isBase(sf) {
			bases = append(bases, i)
			continue
		}
		m := r.newMember(t, sf, kind)
		seen[m.Name] = true
		own = append(own, m)
	}

	for _, i := range bases {
		sf := t.Field(i)
		bt := indirect(sf.Type)
		if path[bt] {
			continue
		}
		for _, bm := range r.walk(bt, kind, baseFirst, path) {
			if seen[bm.Name] {
				continue
			}
			seen[bm.Name] = true
			lifted := *bm
			lifted.Index = append([]int{i}, bm.Index...)
			lifted.Depth = bm.Depth + 1
			inherited = append(inherited, &lifted)
		}
	}

	if baseFirst {
		return append(inherited, own...)
	}
	return append(own, inherited...)
}

// isBase reports whether sf is an inheritance link: an embedded struct or struct pointer
// with no alias and no skip tag.
func (r *Reflector) isBase(sf reflect.StructField) bool {
	if !sf.Anonymous {
		return false
	}
	if indirect(sf.Type).Kind() != reflect.Struct {
		return false
	}
	if _, ok := wellKnownKinds[indirect(sf.Type)]; ok {
		return false
	}
	tag := parseTag(sf.Tag.Get(r.tagName))
	return !tag.skip && tag.name == ""
}

func (r *Reflector) newMember(owner reflect.Type, sf reflect.StructField, kind MemberKind) *Member {
	tag := parseTag(sf.Tag.Get(r.tagName))
	jsonTag := parseTag(sf.Tag.Get("json"))

	m := &Member{
		Name:      sf.Name,
		Alias:     tag.name,
		Type:      sf.Type,
		Kind:      kind,
		Index:     []int{sf.Index[0]},
		Declaring: owner,
		CanRead:   true,
		CanWrite:  true,
		Exported:  sf.IsExported(),
		OmitEmpty: tag.omitEmpty || jsonTag.omitEmpty,
	}
	if m.Alias == "" && !jsonTag.skip {
		m.Alias = jsonTag.name
	}

	switch kind {
	case FieldMember:
		m.Excluded = tag.skip
	case PropertyMember:
		m.CanWrite = !tag.readonly
		ignored := tag.skip || jsonTag.skip || sf.Tag.Get("xml") == "-"
		m.Excluded = ignored || (!sf.IsExported() && !tag.include)
	}
	return m
}
