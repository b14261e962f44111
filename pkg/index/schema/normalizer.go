package schema

// Normalize coerces arbitrary document metadata into the fixed field set of
// an already-provisioned index. The index schema is authoritative:
//   - declared fields present in the source are cast to the declared kind
//     (cast failures collapse to the kind's zero value, never an error)
//   - declared fields missing from the source get the kind's zero value
//   - source fields not declared in the schema are dropped silently
//
// Normalize never fails, whatever the input looks like.
func Normalize(md Metadata, fields []Field) Metadata {
	out := make(Metadata, len(fields))
	for _, f := range fields {
		v, ok := md[f.Name]
		if !ok {
			out[f.Name] = ZeroOf(f.Kind)
			continue
		}
		out[f.Name] = CastToKind(v, f.Kind)
	}
	return out
}
