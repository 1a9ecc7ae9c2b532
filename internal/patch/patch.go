// Package patch implements dot-path addressing over the draft tree. Paths
// like "people.0.name.first" are the stable field keys shared with the
// validators and the UI error display. Set is copy-on-write: every node on
// the traversed spine is copied, siblings keep their references.
package patch

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shockerli/cvt"

	"github.com/oakhaven/contracts/internal/model"
)

// Get resolves path against root. The second return is false when any
// segment is missing, out of range, or the path is empty.
func Get(root any, path string) (any, bool) {
	if path == "" || root == nil {
		return nil, false
	}
	v, ok := get(reflect.ValueOf(root), strings.Split(path, "."))
	if !ok || !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

// Set writes value at path and returns a new root; the input is never
// mutated. Nil pointer and nil map intermediates are created on the way
// down. A slice index may address an existing element or append at exactly
// the current length; anything past that fails. An empty path writes
// nothing and returns the input unchanged.
func Set(root any, path string, value any) (any, bool) {
	if root == nil {
		return root, false
	}
	if path == "" {
		return root, false
	}
	v, ok := set(reflect.ValueOf(root), strings.Split(path, "."), value)
	if !ok {
		return root, false
	}
	return v.Interface(), true
}

// Apply is Set specialized to the draft root. Every successful write bumps
// Meta.UpdatedAt on the returned draft.
func Apply(d *model.ContractDraft, path string, value any) (*model.ContractDraft, bool) {
	out, ok := Set(d, path, value)
	if !ok {
		return d, false
	}
	next := out.(*model.ContractDraft)
	next.Meta.UpdatedAt = time.Now().UTC()
	return next, true
}

func get(v reflect.Value, tokens []string) (reflect.Value, bool) {
	for _, token := range tokens {
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		switch v.Kind() {
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= v.Len() {
				return reflect.Value{}, false
			}
			v = v.Index(idx)
		case reflect.Struct:
			f, ok := fieldByToken(v, token)
			if !ok {
				return reflect.Value{}, false
			}
			v = f
		case reflect.Map:
			if v.IsNil() {
				return reflect.Value{}, false
			}
			key, ok := mapKey(v.Type().Key(), token)
			if !ok {
				return reflect.Value{}, false
			}
			v = v.MapIndex(key)
			if !v.IsValid() {
				return reflect.Value{}, false
			}
		default:
			return reflect.Value{}, false
		}
	}
	return v, true
}

func set(v reflect.Value, tokens []string, value any) (reflect.Value, bool) {
	if len(tokens) == 0 {
		return coerce(value, v.Type())
	}

	switch v.Kind() {
	case reflect.Pointer:
		elemType := v.Type().Elem()
		var elem reflect.Value
		if v.IsNil() {
			elem = reflect.Zero(elemType)
		} else {
			elem = v.Elem()
		}
		newElem, ok := set(elem, tokens, value)
		if !ok {
			return reflect.Value{}, false
		}
		out := reflect.New(elemType)
		out.Elem().Set(newElem)
		return out, true

	case reflect.Interface:
		if v.IsNil() {
			return reflect.Value{}, false
		}
		return set(v.Elem(), tokens, value)

	case reflect.Struct:
		f, ok := fieldIndexByToken(v.Type(), tokens[0])
		if !ok {
			return reflect.Value{}, false
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		newField, ok := set(v.Field(f), tokens[1:], value)
		if !ok {
			return reflect.Value{}, false
		}
		out.Field(f).Set(newField)
		return out, true

	case reflect.Slice:
		idx, err := strconv.Atoi(tokens[0])
		if err != nil || idx < 0 || idx > v.Len() {
			return reflect.Value{}, false
		}
		length := v.Len()
		if idx == length {
			length++
		}
		out := reflect.MakeSlice(v.Type(), length, length)
		reflect.Copy(out, v)
		newElem, ok := set(out.Index(idx), tokens[1:], value)
		if !ok {
			return reflect.Value{}, false
		}
		out.Index(idx).Set(newElem)
		return out, true

	case reflect.Map:
		key, ok := mapKey(v.Type().Key(), tokens[0])
		if !ok {
			return reflect.Value{}, false
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len()+1)
		if !v.IsNil() {
			iter := v.MapRange()
			for iter.Next() {
				out.SetMapIndex(iter.Key(), iter.Value())
			}
		}
		elem := reflect.Zero(v.Type().Elem())
		if existing := v.MapIndex(key); existing.IsValid() {
			elem = existing
		}
		newElem, ok := set(elem, tokens[1:], value)
		if !ok {
			return reflect.Value{}, false
		}
		out.SetMapIndex(key, newElem)
		return out, true

	default:
		return reflect.Value{}, false
	}
}

// fieldByToken matches a struct field by its json tag name, falling back to
// a case-insensitive field-name match.
func fieldByToken(v reflect.Value, token string) (reflect.Value, bool) {
	i, ok := fieldIndexByToken(v.Type(), token)
	if !ok {
		return reflect.Value{}, false
	}
	return v.Field(i), true
}

func fieldIndexByToken(t reflect.Type, token string) (int, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag != "" {
			if comma := strings.IndexByte(tag, ','); comma >= 0 {
				tag = tag[:comma]
			}
			if tag == token {
				return i, true
			}
		}
		if strings.EqualFold(f.Name, token) {
			return i, true
		}
	}
	return 0, false
}

func mapKey(t reflect.Type, token string) (reflect.Value, bool) {
	if t.Kind() != reflect.String {
		return reflect.Value{}, false
	}
	return reflect.ValueOf(token).Convert(t), true
}

var timeType = reflect.TypeOf(time.Time{})

// coerce converts an incoming patch value into the destination field type.
// Patch values arrive loosely typed (form strings, json numbers), so scalar
// targets go through cvt.
func coerce(value any, t reflect.Type) (reflect.Value, bool) {
	if value == nil {
		return reflect.Zero(t), true
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}

	if t.Kind() == reflect.Pointer {
		elem, ok := coerce(value, t.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		out := reflect.New(t.Elem())
		out.Elem().Set(elem)
		return out, true
	}

	switch t.Kind() {
	case reflect.String:
		s, err := cvt.StringE(value)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(s).Convert(t), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cvt.Int64E(value)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(t), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cvt.Uint64E(value)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(t), true
	case reflect.Float32, reflect.Float64:
		f, err := cvt.Float64E(value)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(f).Convert(t), true
	case reflect.Bool:
		b, err := cvt.BoolE(value)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(b).Convert(t), true
	case reflect.Struct:
		if t == timeType {
			ts, err := cvt.TimeE(value)
			if err != nil {
				return reflect.Value{}, false
			}
			return reflect.ValueOf(ts), true
		}
	}

	if rv.Type().ConvertibleTo(t) && rv.Kind() == t.Kind() {
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}
