// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamltags"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	bytesType    = reflect.TypeOf([]byte{})

	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

type primitiveSerializer struct{}

var _ Serializable = primitiveSerializer{}

func (primitiveSerializer) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	ev, err := oc.Context.Reader.Expect(yamlevents.Scalar)
	if err != nil {
		return reflect.Value{}, err
	}
	value, err := parsePrimitive(oc.Descriptor.Type, ev.Value)
	if err != nil {
		return reflect.Value{}, yamlevents.NewError(ev, "%s", err)
	}
	return value, nil
}

func (primitiveSerializer) WriteYaml(oc *ObjectContext) error {
	rendered, textual, err := renderPrimitive(oc.Instance)
	if err != nil {
		return err
	}
	return oc.Context.Writer.Emit(newScalarInfo(oc, rendered, textual))
}

// newScalarInfo marks which presentations imply the tag. Strings that
// would resolve to another type get a !!str hint so that they are quoted.
func newScalarInfo(oc *ObjectContext, rendered string, textual bool) *ScalarEventInfo {
	info := &ScalarEventInfo{ObjectEventInfo: oc.objectInfo(), RenderedValue: rendered}
	schema := oc.Context.Schema()

	switch {
	case info.Tag == "" && textual && schema.Resolve(rendered) != yamltags.StrTag:
		info.Tag = yamltags.StrTag
		info.IsQuotedImplicit = true
	case info.Tag == "":
		info.IsPlainImplicit = true
		info.IsQuotedImplicit = true
	default:
		info.IsPlainImplicit = schema.Resolve(rendered) == info.Tag
		info.IsQuotedImplicit = info.Tag == yamltags.StrTag
	}
	return info
}

// isTextValue reports whether value is written as a string even though
// its kind may be numeric.
func isTextValue(value reflect.Value) bool {
	typ := value.Type()
	return typ == durationType || typ == timeType || descriptor.IsTextType(typ)
}

func renderPrimitive(value reflect.Value) (string, bool, error) {
	typ := value.Type()

	switch {
	case typ == timeType:
		return value.Interface().(time.Time).Format(time.RFC3339Nano), true, nil
	case typ == bytesType:
		return base64.StdEncoding.EncodeToString(value.Bytes()), true, nil
	case typ == durationType:
		return time.Duration(value.Int()).String(), true, nil
	case descriptor.IsTextType(typ):
		text, err := marshalText(value)
		return text, true, err
	}

	switch typ.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(value.Bool()), false, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(value.Int(), 10), false, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(value.Uint(), 10), false, nil
	case reflect.Float32, reflect.Float64:
		return yamltags.FormatFloat(value.Float(), typ.Bits()), false, nil
	case reflect.String:
		return value.String(), true, nil
	}
	return "", false, fmt.Errorf("%s is not a primitive type", typ)
}

func marshalText(value reflect.Value) (string, error) {
	if !value.Type().Implements(textMarshalerType) {
		if !value.CanAddr() {
			ptr := reflect.New(value.Type())
			ptr.Elem().Set(value)
			value = ptr.Elem()
		}
		value = value.Addr()
	}
	text, err := value.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return "", fmt.Errorf("marshaling %s: %s", value.Type(), err)
	}
	return string(text), nil
}

func parsePrimitive(typ reflect.Type, text string) (reflect.Value, error) {
	result := reflect.New(typ).Elem()

	switch {
	case typ == timeType:
		parsed, err := parseTime(text)
		if err != nil {
			return reflect.Value{}, err
		}
		result.Set(reflect.ValueOf(parsed))
		return result, nil

	case typ == bytesType:
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("'%s' is not base64 encoded binary data", text)
		}
		result.SetBytes(decoded)
		return result, nil

	case typ == durationType:
		parsed, err := time.ParseDuration(text)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("'%s' is not a duration", text)
		}
		result.SetInt(int64(parsed))
		return result, nil

	case descriptor.IsTextType(typ):
		err := result.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("unmarshaling %s: %s", typ, err)
		}
		return result, nil
	}

	switch typ.Kind() {
	case reflect.Bool:
		parsed, err := yamltags.ParseBool(text)
		if err != nil {
			return reflect.Value{}, err
		}
		result.SetBool(parsed)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := yamltags.ParseInt(text, typ.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		result.SetInt(parsed)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		parsed, err := yamltags.ParseUint(text, typ.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		result.SetUint(parsed)

	case reflect.Float32, reflect.Float64:
		parsed, err := yamltags.ParseFloat(text, typ.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		result.SetFloat(parsed)

	case reflect.String:
		result.SetString(text)

	default:
		return reflect.Value{}, fmt.Errorf("%s is not a primitive type", typ)
	}
	return result, nil
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(text string) (time.Time, error) {
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, text)
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("'%s' is not a timestamp", text)
}
