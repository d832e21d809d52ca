package overlay

import (
	"math"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToProto converts v to a google.protobuf.Value. Struct fields are a map on
// the wire, so object key order is not preserved.
func (v Value) ToProto() *structpb.Value {
	switch v.kind {
	case Bool:
		return structpb.NewBoolValue(v.b)
	case Number:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return structpb.NewNullValue()
		}
		return structpb.NewNumberValue(v.n)
	case String:
		return structpb.NewStringValue(v.s)
	case List:
		lv := &structpb.ListValue{Values: make([]*structpb.Value, len(v.list))}
		for i, e := range v.list {
			lv.Values[i] = e.ToProto()
		}
		return structpb.NewListValue(lv)
	case Object:
		st := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(v.obj.keys))}
		for _, k := range v.obj.keys {
			st.Fields[k] = v.obj.vals[k].ToProto()
		}
		return structpb.NewStructValue(st)
	}
	return structpb.NewNullValue()
}

// FromProto converts a google.protobuf.Value back. Struct keys are sorted.
func FromProto(pv *structpb.Value) Value {
	if pv == nil {
		return Value{}
	}
	return FromInterface(pv.AsInterface())
}
