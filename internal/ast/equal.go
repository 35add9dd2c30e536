package ast

// Equal reports whether a and b are structurally equal types, used by the
// round-trip law in spec §8 and by the unifier's "equal variables pass
// through" rule.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindVar:
		return a.Var == b.Var
	case KindForall:
		return a.Bound == b.Bound && Equal(a.Body, b.Body)
	case KindExistential:
		if a.Name != b.Name || len(a.Defaults) != len(b.Defaults) {
			return false
		}
		for i := range a.Defaults {
			if !Equal(a.Defaults[i], b.Defaults[i]) {
				return false
			}
		}
		return true
	case KindFunction:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(a.Result, b.Result)
	case KindApp:
		if a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		if a.Name != b.Name || len(a.RecordParams) != len(b.RecordParams) || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.RecordParams {
			if a.RecordParams[i] != b.RecordParams[i] {
				return false
			}
		}
		for i := range a.Fields {
			if a.Fields[i].Key != b.Fields[i].Key || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
