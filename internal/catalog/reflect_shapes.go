package catalog

import (
	"fmt"
	"reflect"
	"strings"

	"awsquery/internal/normalize"
)

// reflectOperations and reflectDescribe are the fallback described in
// the spec's design notes: when a service has no hand-maintained entry
// in static_shapes.go, derive its operation list and shapes from the
// live SDK client's method set via reflect, instead of hand-writing a
// table for every operation of every service the SDK ships.
//
// aws-sdk-go-v2's generated clients expose one exported method per
// operation, shaped like:
//
//	func (c *Client) DescribeInstances(ctx context.Context, params *DescribeInstancesInput, optFns ...func(*Options)) (*DescribeInstancesOutput, error)
//
// and a codegen convention this fallback leans on directly: a required
// input member is generated as a value field (string, int32, ...) while
// an optional one is generated as a pointer (*string, *int32, ...). That
// lets Required be derived without parsing any model file.

func reflectOperations(client any) []string {
	t := reflect.TypeOf(client)
	var names []string
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if isOperationMethod(m) {
			names = append(names, m.Name)
		}
	}
	return names
}

func reflectDescribe(client any, actionKey string) (OperationShape, string, error) {
	t := reflect.TypeOf(client)
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !isOperationMethod(m) {
			continue
		}
		if normalize.Key(m.Name) != actionKey {
			continue
		}
		inputType := m.Type.In(2) // 0=receiver, 1=context.Context, 2=*XxxInput
		shape := OperationShape{Inputs: shapeInputFields(inputType)}
		outputType := m.Type.Out(0)
		shape.OutputListKey = guessOutputListKey(outputType)
		return shape, m.Name, nil
	}
	return OperationShape{}, "", fmt.Errorf("no such operation")
}

// isOperationMethod filters a client's method set down to generated
// API calls: exported, taking (context.Context, *XInput, ...optFns),
// returning (*XOutput, error).
func isOperationMethod(m reflect.Method) bool {
	if !m.IsExported() {
		return false
	}
	mt := m.Type // method value type includes the receiver as In(0)
	if mt.NumIn() < 3 || mt.NumOut() != 2 {
		return false
	}
	if mt.In(1).String() != "context.Context" {
		return false
	}
	if mt.In(2).Kind() != reflect.Ptr {
		return false
	}
	if mt.Out(1).String() != "error" {
		return false
	}
	return strings.HasSuffix(mt.In(2).Elem().Name(), "Input")
}

func shapeInputFields(inputType reflect.Type) []InputField {
	if inputType.Kind() == reflect.Ptr {
		inputType = inputType.Elem()
	}
	if inputType.Kind() != reflect.Struct {
		return nil
	}
	var fields []InputField
	for i := 0; i < inputType.NumField(); i++ {
		f := inputType.Field(i)
		if !f.IsExported() || f.Name == "noSmithyDocumentSerde" {
			continue
		}
		fields = append(fields, InputField{
			Name:     f.Name,
			Required: f.Type.Kind() != reflect.Ptr,
			Kind:     fieldKind(f.Type),
		})
	}
	return fields
}

func fieldKind(t reflect.Type) FieldKind {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Struct, reflect.Map:
		return KindStruct
	default:
		return KindScalar
	}
}

// guessOutputListKey applies the same "unique list-of-struct child"
// heuristic the Flattener uses at runtime (4.C rule 1), but over the Go
// struct shape instead of a decoded response tree, purely for
// `--describe` introspection output; the Flattener never consults this
// value.
func guessOutputListKey(outputType reflect.Type) string {
	if outputType.Kind() == reflect.Ptr {
		outputType = outputType.Elem()
	}
	if outputType.Kind() != reflect.Struct {
		return ""
	}
	candidate := ""
	count := 0
	for i := 0; i < outputType.NumField(); i++ {
		f := outputType.Field(i)
		if !f.IsExported() || isMetadataFieldName(f.Name) {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Slice {
			candidate = f.Name
			count++
		}
	}
	if count == 1 {
		return candidate
	}
	return ""
}

func isMetadataFieldName(name string) bool {
	switch name {
	case "ResultMetadata", "NextToken", "Marker", "NextMarker", "IsTruncated":
		return true
	}
	return strings.HasSuffix(name, "Token")
}
