// FILE: lixenwraith/reflector/dump.go
package reflector

import (
	"reflect"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// memberDump is the printable form of a Member; reflect.Type values are rendered as names.
type memberDump struct {
	Name      string
	Alias     string
	Type      string
	Depth     int
	CanWrite  bool
	OmitEmpty bool
	Excluded  bool
}

type descriptorDump struct {
	Type       string
	Kind       string
	Flags      []string
	Properties []memberDump
	Fields     []memberDump
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

// Dump renders every cached descriptor, sorted by type name, for debugging.
func (r *Reflector) Dump() string {
	var out []descriptorDump
	r.descriptors.Range(func(_, v any) bool {
		out = append(out, dumpDescriptor(v.(*TypeDescriptor)))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })

	var sb strings.Builder
	for _, d := range out {
		sb.WriteString(dumpConfig.Sdump(d))
	}
	return sb.String()
}

// DumpType describes t and renders its descriptor.
func (r *Reflector) DumpType(t reflect.Type) string {
	d := r.Describe(t)
	if d == nil {
		return ""
	}
	return dumpConfig.Sdump(dumpDescriptor(d))
}

func dumpDescriptor(d *TypeDescriptor) descriptorDump {
	dd := descriptorDump{Type: d.Type.String(), Kind: d.Kind.String()}
	for _, f := range []struct {
		set  bool
		name string
	}{
		{d.IsEnum, "enum"},
		{d.IsValueType, "value"},
		{d.IsNullable, "nullable"},
		{d.IsCollection, "collection"},
		{d.IsMap, "map"},
	} {
		if f.set {
			dd.Flags = append(dd.Flags, f.name)
		}
	}
	for _, m := range d.All {
		dd.Properties = append(dd.Properties, dumpMember(m))
	}
	for _, m := range d.Fields {
		dd.Fields = append(dd.Fields, dumpMember(m))
	}
	return dd
}

func dumpMember(m *Member) memberDump {
	return memberDump{
		Name:      m.Name,
		Alias:     m.Alias,
		Type:      m.Type.String(),
		Depth:     m.Depth,
		CanWrite:  m.CanWrite,
		OmitEmpty: m.OmitEmpty,
		Excluded:  m.Excluded,
	}
}
