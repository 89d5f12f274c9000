package querycache

import (
	"bytes"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/goliatone/go-query-cache/cache"
	"github.com/vmihailenco/msgpack/v5"
)

// payloadTag maps struct fields onto payload keys so typed results and plain
// documents share one representation.
const payloadTag = "json"

func marshal(v any, tag string) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag(tag)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalInto(data []byte, dest any, tag string) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag(tag)
	return dec.Decode(dest)
}

// encodePayload serializes a raw backing result for storage.
func encodePayload(v any) ([]byte, error) {
	return marshal(v, payloadTag)
}

// decodePayload reads a payload back as plain data: maps become Documents,
// integers int64 and floats float64.
func decodePayload(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag(payloadTag)
	dec.UseLooseInterfaceDecoding(true)
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// resultCodec rebuilds the caller facing shape of a payload from the live
// descriptor. Nothing about the shape is stored with the payload.
type resultCodec struct {
	registry ModelRegistry
}

// decode reconstructs a query result. projection is non-nil only when the
// fields were removed from the backing query and must be applied in-process.
func (rc resultCodec) decode(d cache.Descriptor, projection cache.Projection, payload []byte) (any, error) {
	raw, err := decodePayload(payload)
	if err != nil {
		return nil, errors.Wrap(err, "querycache: decode payload")
	}
	if raw == nil {
		return nil, nil
	}

	switch {
	case d.Op.IsCount():
		return toInt64(raw)
	case d.Op == cache.OpDistinct:
		return raw, nil
	case d.Op == cache.OpAggregate:
		if docs, ok := toDocuments(raw); ok {
			return docs, nil
		}
		return raw, nil
	}

	idField := rc.idField(d.Model)
	switch v := raw.(type) {
	case []any:
		docs, ok := toDocuments(v)
		if !ok {
			return nil, errors.Wrapf(cache.ErrInvalidResultType, "%s result holds non document values", d.Op)
		}
		if projection != nil {
			for i, doc := range docs {
				docs[i] = project(doc, projection, idField)
			}
		}
		if d.Lean {
			return docs, nil
		}
		model, err := rc.model(d.Model)
		if err != nil {
			return nil, err
		}
		return model.HydrateAll(docs)
	case map[string]any:
		doc := Document(v)
		if projection != nil {
			doc = project(doc, projection, idField)
		}
		if d.Lean {
			return doc, nil
		}
		model, err := rc.model(d.Model)
		if err != nil {
			return nil, err
		}
		return model.Hydrate(doc)
	default:
		return nil, errors.Wrapf(cache.ErrInvalidResultType, "%s result is %T", d.Op, raw)
	}
}

func (rc resultCodec) model(name string) (Model, error) {
	if rc.registry != nil {
		if m, ok := rc.registry.Model(name); ok {
			return m, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownModel, "%q", name)
}

func (rc resultCodec) idField(name string) string {
	if m, err := rc.model(name); err == nil && m.IDField() != "" {
		return m.IDField()
	}
	return DefaultIDField
}

// project filters doc by an inclusion or exclusion projection. Inclusion keeps
// the listed fields and the identity field unless it is explicitly excluded.
func project(doc Document, fields cache.Projection, idField string) Document {
	if len(fields) == 0 {
		return doc
	}

	included := fields.Included()
	out := make(Document, len(doc))
	if len(included) == 0 {
		for k, v := range doc {
			if excluded, ok := fields[k]; ok && excluded == 0 {
				continue
			}
			out[k] = v
		}
		return out
	}

	for _, field := range included {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	if keep, ok := fields[idField]; !ok || keep > 0 {
		if v, ok := doc[idField]; ok {
			out[idField] = v
		}
	}
	return out
}

func toDocuments(raw any) ([]Document, bool) {
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	docs := make([]Document, 0, len(list))
	for _, item := range list {
		doc, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		docs = append(docs, doc)
	}
	return docs, true
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, errors.Wrapf(cache.ErrInvalidResultType, "count result is %T", raw)
	}
}

// isNil reports whether v is nil or a nil pointer, slice, map or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
