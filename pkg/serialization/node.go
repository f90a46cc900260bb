// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"reflect"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamlnode"
)

// nodeSerializerFactory lets values of type yamlnode.Node (and the node
// pointer types) carry raw YAML inside typed objects.
type nodeSerializerFactory struct{}

var _ SerializableFactory = nodeSerializerFactory{}

func (nodeSerializerFactory) TryCreate(_ *SerializerContext, desc *descriptor.TypeDescriptor) Serializable {
	typ := desc.Type
	if typ == nodeInterfaceType || (typ.Kind() == reflect.Ptr && typ.Implements(nodeInterfaceType)) {
		return nodeSerializer{}
	}
	return nil
}

type nodeSerializer struct{}

var _ Serializable = nodeSerializer{}
var _ NullReader = nodeSerializer{}

// ReadsNull keeps null scalars as nodes.
func (nodeSerializer) ReadsNull() bool { return true }

// ReadYaml loads one node with its own anchor scope: aliases inside the
// node may only refer to anchors inside the same node.
func (nodeSerializer) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	reader := oc.Context.Reader

	startEv, err := reader.Peek()
	if err != nil {
		return reflect.Value{}, err
	}

	state := yamlnode.NewLoadingState()
	node, err := yamlnode.ParseNode(reader, state)
	if err != nil {
		return reflect.Value{}, err
	}
	err = state.ResolveAliases()
	if err != nil {
		return reflect.Value{}, err
	}

	value := reflect.ValueOf(node)
	if !value.Type().AssignableTo(oc.Descriptor.Type) {
		return reflect.Value{}, yamlevents.NewError(startEv, "%s cannot be read into %s",
			yamlnode.Describe(node), oc.Descriptor.Type)
	}
	return value, nil
}

// WriteYaml saves a copy of the node so that anchors can be given to
// shared nodes without touching the caller's tree.
func (nodeSerializer) WriteYaml(oc *ObjectContext) error {
	node, ok := oc.Instance.Interface().(yamlnode.Node)
	if !ok || node == nil {
		return oc.Context.Writer.Emit(&ScalarEventInfo{RenderedValue: "null", IsPlainImplicit: true})
	}

	doc := yamlnode.NewDocument(yamlnode.DeepCopy(node))
	doc.AssignAnchors()

	emitter := &nodeEventEmitter{ctx: oc.Context, anchors: map[string]string{}}
	if oc.Anchor != "" {
		emitter.rootAnchor = oc.Anchor
	}
	return yamlnode.SaveNode(doc.Root, emitter)
}

// nodeEventEmitter forwards the events of a saved node to the serializer's
// writer, renaming anchors that are already used elsewhere in the document.
type nodeEventEmitter struct {
	ctx        *SerializerContext
	anchors    map[string]string
	rootAnchor string
	started    bool
}

var _ yamlevents.Emitter = &nodeEventEmitter{}

func (e *nodeEventEmitter) Emit(ev *yamlevents.Event) error {
	info, err := fromEvent(ev)
	if err != nil {
		return err
	}

	switch typed := info.(type) {
	case *AliasEventInfo:
		if renamed, found := e.anchors[typed.Alias]; found {
			typed.Alias = renamed
		}
	case anchoredEventInfo:
		obj := typed.objectInfo()
		isRoot := !e.started
		switch {
		case isRoot && e.rootAnchor != "":
			if obj.Anchor != "" {
				e.anchors[obj.Anchor] = e.rootAnchor
			}
			obj.Anchor = e.rootAnchor
		case obj.Anchor != "":
			obj.Anchor = e.rename(obj.Anchor)
		}
	}
	e.started = true

	return e.ctx.Writer.Emit(info)
}

func (e *nodeEventEmitter) rename(anchor string) string {
	renamed := anchor
	if e.ctx.usedAnchors[anchor] {
		renamed = e.ctx.nextAnchor()
	} else {
		e.ctx.usedAnchors[anchor] = true
	}
	e.anchors[anchor] = renamed
	return renamed
}
