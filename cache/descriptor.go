package cache

// Op identifies the kind of operation a query performs.
type Op string

const (
	OpFind                   Op = "find"
	OpFindOne                Op = "findOne"
	OpCount                  Op = "count"
	OpCountDocuments         Op = "countDocuments"
	OpEstimatedDocumentCount Op = "estimatedDocumentCount"
	OpDistinct               Op = "distinct"
	OpAggregate              Op = "aggregate"
)

// IsCount reports whether the operation returns a scalar count.
func (o Op) IsCount() bool {
	switch o {
	case OpCount, OpCountDocuments, OpEstimatedDocumentCount:
		return true
	default:
		return false
	}
}

// Hydrates reports whether results of the operation are documents that can be
// turned into typed entities. Counts, distinct value lists and aggregation
// output are returned as-is.
func (o Op) Hydrates() bool {
	switch {
	case o.IsCount(), o == OpDistinct, o == OpAggregate:
		return false
	default:
		return true
	}
}

// SortField is one entry of an ordered sort.
type SortField struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

// Projection maps field names to 1 (include) or 0 (exclude).
type Projection map[string]int

// Included returns the fields explicitly selected by the projection.
func (p Projection) Included() []string {
	var out []string
	for field, v := range p {
		if v > 0 {
			out = append(out, field)
		}
	}
	return out
}

// Descriptor is an immutable snapshot of a query's identity. It is only used
// to derive cache keys and to tell the result codec what shape the caller expects.
type Descriptor struct {
	Model      string           `json:"model"`
	Op         Op               `json:"op"`
	Conditions map[string]any   `json:"conditions,omitempty"`
	Sort       []SortField      `json:"sort,omitempty"`
	Skip       int              `json:"skip,omitempty"`
	Limit      int              `json:"limit,omitempty"`
	Fields     Projection       `json:"fields,omitempty"`
	Options    map[string]any   `json:"options,omitempty"`
	Path       string           `json:"path,omitempty"`
	Distinct   string           `json:"distinct,omitempty"`
	Lean       bool             `json:"lean,omitempty"`
	Pipeline   []map[string]any `json:"pipeline,omitempty"`
}

// Clone returns a copy whose top level maps and slices are not shared with d.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.Conditions = cloneMap(d.Conditions)
	out.Options = cloneMap(d.Options)
	if d.Sort != nil {
		out.Sort = append([]SortField(nil), d.Sort...)
	}
	if d.Fields != nil {
		out.Fields = make(Projection, len(d.Fields))
		for k, v := range d.Fields {
			out.Fields[k] = v
		}
	}
	if d.Pipeline != nil {
		out.Pipeline = make([]map[string]any, len(d.Pipeline))
		for i, stage := range d.Pipeline {
			out.Pipeline[i] = cloneMap(stage)
		}
	}
	return out
}

// WithoutFields returns a copy of d with the projection removed.
func (d Descriptor) WithoutFields() Descriptor {
	out := d.Clone()
	out.Fields = nil
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
