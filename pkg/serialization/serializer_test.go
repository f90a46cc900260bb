// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization_test

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"carvel.dev/yamlgraph/pkg/orderedmap"
	"carvel.dev/yamlgraph/pkg/serialization"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamlevents/yamlv3"
	"carvel.dev/yamlgraph/pkg/yamlnode"
	"carvel.dev/yamlgraph/pkg/yamltags"
	"github.com/google/go-cmp/cmp"
	"github.com/k14s/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Address struct {
	City string `yaml:"city"`
}

type Person struct {
	Name    string   `yaml:"name"`
	Age     int      `yaml:"age"`
	Tags    []string `yaml:"tags,omitempty,flow"`
	Address *Address `yaml:"address,omitempty"`
}

type Household struct {
	Home *Address `yaml:"home"`
	Work *Address `yaml:"work"`
}

type Chain struct {
	Name string `yaml:"name"`
	Next *Chain `yaml:"next,omitempty"`
}

func newSerializer(t *testing.T, configure func(*serialization.Settings)) *serialization.Serializer {
	settings := serialization.NewSettings()
	if configure != nil {
		configure(settings)
	}
	serializer, err := serialization.New(settings)
	require.NoError(t, err)
	return serializer
}

func marshal(t *testing.T, serializer *serialization.Serializer, value interface{}) string {
	out, err := serializer.Marshal(value)
	require.NoError(t, err)
	return string(out)
}

func TestMappingEventsKeepInsertionOrder(t *testing.T) {
	person := orderedmap.NewMap()
	person.Set("name", "Alice")
	person.Set("age", 30)

	rec := yamlevents.NewRecorder()
	err := newSerializer(t, nil).SerializeTo(rec, person, reflect.TypeOf(person))
	require.NoError(t, err)

	var nodeEvents []string
	for _, ev := range rec.Events() {
		switch ev.Kind {
		case yamlevents.Scalar:
			nodeEvents = append(nodeEvents, "Scalar("+ev.Value+")")
		case yamlevents.MappingStart, yamlevents.MappingEnd:
			assert.Equal(t, "", ev.Anchor)
			nodeEvents = append(nodeEvents, ev.Kind.String())
		case yamlevents.StreamStart, yamlevents.StreamEnd, yamlevents.DocumentStart, yamlevents.DocumentEnd:
		default:
			t.Fatalf("unexpected event %s", ev)
		}
	}

	assert.Equal(t, []string{
		yamlevents.MappingStart.String(),
		"Scalar(name)", "Scalar(Alice)", "Scalar(age)", "Scalar(30)",
		yamlevents.MappingEnd.String(),
	}, nodeEvents)
}

func TestMarshalStruct(t *testing.T) {
	person := Person{Name: "Alice", Age: 30, Tags: []string{"a", "b"}, Address: &Address{City: "Paris"}}

	expected := `name: Alice
age: 30
tags: [a, b]
address:
  city: Paris
`
	assertEqual(t, marshal(t, newSerializer(t, nil), person), expected)
}

func TestStructRoundTrip(t *testing.T) {
	serializer := newSerializer(t, nil)
	person := Person{Name: "Bob", Age: 41, Tags: []string{"x"}, Address: &Address{City: "Oslo"}}

	out, err := serializer.Marshal(person)
	require.NoError(t, err)

	var result Person
	require.NoError(t, serializer.Unmarshal(out, &result))

	if diff := cmp.Diff(person, result); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStringsThatLookLikeOtherScalarsAreQuoted(t *testing.T) {
	serializer := newSerializer(t, nil)
	values := map[string]string{"a": "30", "b": "true", "c": "null", "d": "", "e": "plain"}

	out := marshal(t, serializer, values)
	assertEqual(t, out, `a: "30"
b: "true"
c: "null"
d: ""
e: plain
`)

	var result map[string]string
	require.NoError(t, serializer.Unmarshal([]byte(out), &result))
	assert.Equal(t, values, result)
}

func TestCyclesArePreserved(t *testing.T) {
	serializer := newSerializer(t, nil)

	root := &Chain{Name: "root"}
	root.Next = &Chain{Name: "leaf", Next: root}

	out := marshal(t, serializer, root)
	assert.Contains(t, out, "&o1")
	assert.Contains(t, out, "*o1")

	var result *Chain
	require.NoError(t, serializer.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.Next)
	assert.Equal(t, "root", result.Name)
	assert.Equal(t, "leaf", result.Next.Name)
	assert.Same(t, result, result.Next.Next)
}

func TestSelfReferencingSequencesRoundTrip(t *testing.T) {
	serializer := newSerializer(t, nil)

	items := make([]interface{}, 2)
	items[0] = "x"
	items[1] = items

	out := marshal(t, serializer, items)
	assertEqual(t, out, `&o1
- x
- *o1
`)

	result, err := serializer.Deserialize(strings.NewReader(out), reflect.TypeOf(items), nil)
	require.NoError(t, err)
	outer := result.([]interface{})
	require.Len(t, outer, 2)
	assert.Equal(t, "x", outer[0])
	inner, ok := outer[1].([]interface{})
	require.True(t, ok, "expected []interface{}, got %T", outer[1])
	require.Len(t, inner, 2)
	assert.True(t, &outer[0] == &inner[0], "expected the alias to share the backing array")

	generic, err := serializer.Deserialize(strings.NewReader("&a [x, [y, *a], {k: *a}]\n"), nil, nil)
	require.NoError(t, err)
	seq := generic.([]interface{})
	require.Len(t, seq, 3)
	nested := seq[1].([]interface{})
	assert.Equal(t, "y", nested[0])
	assert.True(t, &seq[0] == &nested[1].([]interface{})[0])
}

func TestSharedValuesAreWrittenOnce(t *testing.T) {
	serializer := newSerializer(t, nil)
	office := &Address{City: "Lyon"}

	out := marshal(t, serializer, Household{Home: office, Work: office})
	assertEqual(t, out, `home: &o1
  city: Lyon
work: *o1
`)

	var result Household
	require.NoError(t, serializer.Unmarshal([]byte(out), &result))
	assert.Same(t, result.Home, result.Work)
}

func TestCyclesNeedAliases(t *testing.T) {
	serializer := newSerializer(t, func(s *serialization.Settings) { s.EmitAlias = false })

	office := &Address{City: "Lyon"}
	out := marshal(t, serializer, Household{Home: office, Work: office})
	assert.NotContains(t, out, "&")

	root := &Chain{Name: "root"}
	root.Next = root
	_, err := serializer.Marshal(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refers to itself")
}

func TestUnusedAnchorsArePruned(t *testing.T) {
	out := marshal(t, newSerializer(t, nil), &Person{Name: "n", Tags: []string{"t"}, Address: &Address{City: "c"}})
	assert.NotContains(t, out, "&")
}

func TestDuplicateAnchorsAreRejected(t *testing.T) {
	_, err := newSerializer(t, nil).Deserialize(strings.NewReader("a: &x 1\nb: &x 2\n"), reflect.TypeOf(map[string]int{}), nil)
	require.Error(t, err)

	var dupErr *yamlevents.DuplicateAnchorError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "x", dupErr.Anchor)
}

func TestUnknownAliasesAreRejected(t *testing.T) {
	parser := yamlevents.NewSliceParser(yamlevents.Document(
		yamlevents.NewMappingStart("", "", true, yamlevents.BlockStyle),
		yamlevents.NewPlainScalar("a"),
		yamlevents.NewAlias("missing"),
		yamlevents.NewMappingEnd(),
	)...)

	_, err := newSerializer(t, nil).DeserializeFrom(yamlevents.NewReader(parser), nil, nil)
	require.Error(t, err)

	var notFound *yamlevents.AnchorNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Anchor)

	var yamlErr *yamlevents.YamlError
	require.ErrorAs(t, err, &yamlErr)
}

func TestUnknownAliasesInTextAreRejected(t *testing.T) {
	_, err := newSerializer(t, nil).Deserialize(strings.NewReader("a: *undefined\n"), nil, nil)
	require.Error(t, err)

	var notFound *yamlevents.AnchorNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "undefined", notFound.Anchor)
	assert.Equal(t, "1:4", notFound.Start.AsCompactString())

	var yamlErr *yamlevents.YamlError
	require.ErrorAs(t, err, &yamlErr)
	assert.Equal(t, "yaml: line 1:4: alias '*undefined' references an undefined anchor", err.Error())
}

func TestDuplicateKeysAreRejected(t *testing.T) {
	parser := yamlevents.NewSliceParser(yamlevents.Document(
		yamlevents.NewMappingStart("", "", true, yamlevents.BlockStyle),
		yamlevents.NewPlainScalar("a"), yamlevents.NewPlainScalar("1"),
		yamlevents.NewPlainScalar("a"), yamlevents.NewPlainScalar("2"),
		yamlevents.NewMappingEnd(),
	)...)

	_, err := newSerializer(t, nil).DeserializeFrom(yamlevents.NewReader(parser), reflect.TypeOf(map[string]int{}), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key 'a'")
}

func TestGenericValues(t *testing.T) {
	serializer := newSerializer(t, nil)

	value, err := serializer.Deserialize(strings.NewReader(`
name: Alice
age: 30
ratio: 0.5
ok: true
none: null
list: [1, two]
`), nil, nil)
	require.NoError(t, err)

	m, ok := value.(*orderedmap.Map)
	require.True(t, ok, "got %T", value)
	assert.Equal(t, []interface{}{"name", "age", "ratio", "ok", "none", "list"}, m.Keys())

	age, _ := m.Get("age")
	assert.Equal(t, 30, age)
	ratio, _ := m.Get("ratio")
	assert.Equal(t, 0.5, ratio)
	okValue, _ := m.Get("ok")
	assert.Equal(t, true, okValue)
	none, found := m.Get("none")
	assert.True(t, found)
	assert.Nil(t, none)
	list, _ := m.Get("list")
	assert.Equal(t, []interface{}{1, "two"}, list)
}

func TestEmptyDocumentIsNil(t *testing.T) {
	value, err := newSerializer(t, nil).Deserialize(strings.NewReader(""), reflect.TypeOf(&Person{}), nil)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestDeserializeIntoExistingValue(t *testing.T) {
	existing := &Person{Name: "keep", Age: 1}

	value, err := newSerializer(t, nil).Deserialize(strings.NewReader("age: 2\n"), reflect.TypeOf(existing), existing)
	require.NoError(t, err)
	assert.Same(t, existing, value)
	assert.Equal(t, &Person{Name: "keep", Age: 2}, existing)
}

func TestUnknownMembers(t *testing.T) {
	doc := []byte("name: x\nnickname: y\n")

	var person Person
	err := newSerializer(t, nil).Unmarshal(doc, &person)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no member 'nickname'")

	var yamlErr *yamlevents.YamlError
	require.ErrorAs(t, err, &yamlErr)
	assert.Equal(t, 2, yamlErr.Start.LineNum())

	err = newSerializer(t, nil).Unmarshal([]byte("adress:\n  city: Paris\n"), &person)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no member 'adress' (did you mean 'address'?)")

	lenient := newSerializer(t, func(s *serialization.Settings) { s.IgnoreUnmatchedProperties = true })
	require.NoError(t, lenient.Unmarshal(doc, &person))
	assert.Equal(t, "x", person.Name)
}

func TestErrorsPointAtTheOffendingNode(t *testing.T) {
	var person Person
	err := newSerializer(t, nil).Unmarshal([]byte("name: x\nage: old\n"), &person)
	require.Error(t, err)

	yamlErr, ok := err.(*yamlevents.YamlError)
	require.True(t, ok, "expected *yamlevents.YamlError, got %T", err)
	assert.Equal(t, 2, yamlErr.Start.LineNum())

	var result []Person
	_, err = newSerializer(t, nil).Deserialize(strings.NewReader("- name: x\n  age: old\n"), reflect.TypeOf(result), nil)
	require.Error(t, err)
	yamlErr, ok = err.(*yamlevents.YamlError)
	require.True(t, ok, "expected *yamlevents.YamlError, got %T", err)
	assert.Equal(t, "2:8", yamlErr.Start.AsCompactString())
}

type Shape interface {
	Area() float64
}

type Square struct {
	Side float64 `yaml:"side"`
}

func (s Square) Area() float64 { return s.Side * s.Side }

type Drawing struct {
	Shapes []Shape `yaml:"shapes"`
}

func TestInterfacesRoundTripThroughTags(t *testing.T) {
	registry := yamltags.NewRegistry(yamltags.NewCoreSchema())
	require.NoError(t, registry.RegisterAssembly(yamltags.NewAssembly("shapes").Register(Square{})))
	registry.RegisterTagMapping("!square", reflect.TypeOf(Square{}), true)

	serializer := newSerializer(t, func(s *serialization.Settings) { s.Registry = registry })

	out := marshal(t, serializer, Drawing{Shapes: []Shape{Square{Side: 2}}})
	assert.Contains(t, out, "serialization_test.Square,shapes")

	var result Drawing
	require.NoError(t, serializer.Unmarshal([]byte(out), &result))
	assert.Equal(t, []Shape{&Square{Side: 2}}, result.Shapes)

	// tag aliases are read but never written
	require.NoError(t, serializer.Unmarshal([]byte("shapes:\n- !square {side: 3}\n"), &result))
	assert.Equal(t, []Shape{&Square{Side: 3}}, result.Shapes)
}

func TestNestedCollectionsUnderInterfaceKeepTheirTypes(t *testing.T) {
	serializer := newSerializer(t, nil)
	value := map[string]interface{}{
		"ints":   []int{1, 2},
		"nested": map[string][]string{"k": {"v"}},
		"plain":  []interface{}{"x"},
	}

	var out bytes.Buffer
	require.NoError(t, serializer.Serialize(&out, value, nil))

	result, err := serializer.Deserialize(&out, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestIncompatibleTagsAreRejected(t *testing.T) {
	registry := yamltags.NewRegistry(yamltags.NewCoreSchema())
	require.NoError(t, registry.RegisterAssembly(yamltags.NewAssembly("shapes").Register(Square{}, Address{})))
	serializer := newSerializer(t, func(s *serialization.Settings) { s.Registry = registry })

	tag, err := registry.TagFromType(reflect.TypeOf(Square{}))
	require.NoError(t, err)

	var address Address
	err = serializer.Unmarshal([]byte(tag+" {side: 1}\n"), &address)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be read into serialization_test.Address")
}

type Document struct {
	Name string        `yaml:"name"`
	Raw  yamlnode.Node `yaml:"raw"`
}

func TestNodesCarryRawYaml(t *testing.T) {
	serializer := newSerializer(t, nil)
	doc := `name: config
raw:
  list: &l [1, 2]
  again: *l
`
	var result Document
	require.NoError(t, serializer.Unmarshal([]byte(doc), &result))

	raw, ok := result.Raw.(*yamlnode.MappingNode)
	require.True(t, ok, "got %T", result.Raw)
	list, _ := raw.GetString("list")
	again, _ := raw.GetString("again")
	assert.Same(t, list, again)

	out := marshal(t, serializer, result)
	assertEqual(t, out, doc)
}

type Bag struct {
	Label string   `yaml:"label"`
	Items []string `yaml:",items"`
}

type Numbers struct {
	Items []int `yaml:",items"`
}

type Catalog struct {
	Owner   string            `yaml:"owner"`
	Entries map[string]string `yaml:",entries"`
}

func TestItemsAndEntriesStructs(t *testing.T) {
	serializer := newSerializer(t, nil)

	assertEqual(t, marshal(t, serializer, Numbers{Items: []int{1, 2}}), "- 1\n- 2\n")
	assertEqual(t, marshal(t, serializer, Bag{Label: "l", Items: []string{"a", "b"}}), `label: l
~Items:
  - a
  - b
`)
	assertEqual(t, marshal(t, serializer, Catalog{Owner: "o", Entries: map[string]string{"k": "v"}}), `owner: o
~Items:
  k: v
`)

	for _, value := range []interface{}{
		&Numbers{Items: []int{1, 2}},
		&Bag{Label: "l", Items: []string{"a", "b"}},
		&Catalog{Owner: "o", Entries: map[string]string{"k": "v"}},
	} {
		out, err := serializer.Marshal(value)
		require.NoError(t, err)

		result := reflect.New(reflect.TypeOf(value).Elem()).Interface()
		require.NoError(t, serializer.Unmarshal(out, result))
		assert.Equal(t, value, result)
	}
}

func TestSpecialCollectionMemberIsConfigurable(t *testing.T) {
	serializer := newSerializer(t, func(s *serialization.Settings) { s.SpecialCollectionMember = "-items-" })
	out := marshal(t, serializer, Bag{Label: "l", Items: []string{"a"}})
	assertEqual(t, out, "label: l\n-items-:\n  - a\n")
}

func TestKeySorting(t *testing.T) {
	ordered := orderedmap.NewMap()
	ordered.Set("b", 1)
	ordered.Set("a", 2)

	assertEqual(t, marshal(t, newSerializer(t, nil), ordered), "b: 1\na: 2\n")

	sorting := newSerializer(t, func(s *serialization.Settings) { s.SortKeyForMapping = true })
	assertEqual(t, marshal(t, sorting, ordered), "a: 2\nb: 1\n")
	assertEqual(t, marshal(t, sorting, Person{Name: "n", Age: 3}), "age: 3\nname: n\n")

	// Go maps are always sorted, numbers by value
	assertEqual(t, marshal(t, newSerializer(t, nil), map[int]string{10: "x", 9: "y"}), "9: y\n10: x\n")
}

func TestNamingConvention(t *testing.T) {
	type Server struct {
		HTTPPort  int
		HostName  string
		ExtraOpts string `yaml:"opts"`
	}
	serializer := newSerializer(t, func(s *serialization.Settings) {
		s.NamingConvention = descriptor.FlatNamingConvention{}
	})
	assertEqual(t, marshal(t, serializer, Server{HTTPPort: 80, HostName: "h", ExtraOpts: "o"}),
		"http_port: 80\nhost_name: h\nopts: o\n")
}

func TestEmitDefaultValues(t *testing.T) {
	serializer := newSerializer(t, func(s *serialization.Settings) { s.EmitDefaultValues = true })
	assertEqual(t, marshal(t, serializer, Person{}), "name: \"\"\nage: 0\n")
}

func TestLimitPrimitiveFlowSequence(t *testing.T) {
	serializer := newSerializer(t, func(s *serialization.Settings) { s.LimitPrimitiveFlowSequence = 2 })

	assertEqual(t, marshal(t, serializer, []int{1, 2}), "[1, 2]\n")
	assertEqual(t, marshal(t, serializer, []int{1, 2, 3}), "- 1\n- 2\n- 3\n")
	assertEqual(t, marshal(t, serializer, [][]int{{1}}), "- [1]\n")
}

func TestArrays(t *testing.T) {
	serializer := newSerializer(t, nil)

	var short [3]int
	require.NoError(t, serializer.Unmarshal([]byte("[1, 2]"), &short))
	assert.Equal(t, [3]int{1, 2, 0}, short)

	var tiny [1]int
	err := serializer.Unmarshal([]byte("[1, 2]"), &tiny)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many items")
}

func TestJSONCompatibleOutput(t *testing.T) {
	serializer := newSerializer(t, func(s *serialization.Settings) { s.EmitJSONCompatible = true })

	person := Person{Name: "Alice", Age: 30, Tags: []string{"30", "x"}, Address: &Address{City: "null"}}
	out := marshal(t, serializer, person)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded), out)
	assert.Equal(t, map[string]interface{}{
		"name":    "Alice",
		"age":     float64(30),
		"tags":    []interface{}{"30", "x"},
		"address": map[string]interface{}{"city": "null"},
	}, decoded)

	office := &Address{City: "Lyon"}
	_, err := serializer.Marshal(Household{Home: office, Work: office})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be represented in JSON")
}

func TestSettingsValidation(t *testing.T) {
	cases := []struct {
		configure func(*serialization.Settings)
		err       string
	}{
		{func(s *serialization.Settings) { s.PreferredIndent = 0 }, "Expected PreferredIndent to be greater than 0, but was 0"},
		{func(s *serialization.Settings) { s.LimitPrimitiveFlowSequence = -1 }, "Expected LimitPrimitiveFlowSequence to be 0 or greater, but was -1"},
		{func(s *serialization.Settings) { s.SpecialCollectionMember = "items" },
			"Expected SpecialCollectionMember to have at least 2 characters and contain one of '.', '~' or '-', but was 'items'"},
		{func(s *serialization.Settings) { s.SpecialCollectionMember = "~" },
			"Expected SpecialCollectionMember to have at least 2 characters and contain one of '.', '~' or '-', but was '~'"},
		{func(s *serialization.Settings) {
			s.Schema = yamltags.NewFailsafeSchema()
			s.Registry = yamltags.NewRegistry(yamltags.NewCoreSchema())
		}, "Expected Schema to be the schema of Registry"},
	}

	for _, tc := range cases {
		settings := serialization.NewSettings()
		tc.configure(settings)
		_, err := serialization.New(settings)
		require.EqualError(t, err, tc.err)
	}

	assert.NoError(t, serialization.NewSettings().Validate())
}

func TestFailsafeSchemaReadsStrings(t *testing.T) {
	serializer := newSerializer(t, func(s *serialization.Settings) { s.Schema = yamltags.NewFailsafeSchema() })

	value, err := serializer.Deserialize(strings.NewReader("[1, true, x]"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"1", "true", "x"}, value)
}

func TestObjectFactoryDefaults(t *testing.T) {
	factory := descriptor.NewDefaultObjectFactory(nil)
	require.NoError(t, factory.SetDefault(reflect.TypeOf((*interface{})(nil)).Elem(), reflect.TypeOf(map[string]interface{}{})))

	serializer := newSerializer(t, func(s *serialization.Settings) { s.ObjectFactory = factory })

	value, err := serializer.Deserialize(strings.NewReader("a: 1\n"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": 1}, value)
}

type refusingFactory struct {
	descriptor.ObjectFactory
	refused reflect.Type
}

func (f refusingFactory) Create(typ reflect.Type) (reflect.Value, error) {
	if typ == f.refused {
		return reflect.Value{}, nil
	}
	return f.ObjectFactory.Create(typ)
}

func TestTypesTheFactoryCannotConstruct(t *testing.T) {
	factory := refusingFactory{ObjectFactory: descriptor.NewDefaultObjectFactory(nil), refused: reflect.TypeOf(Address{})}
	serializer := newSerializer(t, func(s *serialization.Settings) { s.ObjectFactory = factory })

	_, err := serializer.Deserialize(strings.NewReader("city: Lyon\n"), reflect.TypeOf(Address{}), nil)
	require.Error(t, err)
	var creationErr *descriptor.InstanceCreationError
	require.ErrorAs(t, err, &creationErr)
	assert.Equal(t, reflect.TypeOf(Address{}), creationErr.Type)

	value, err := serializer.Deserialize(strings.NewReader("city: Lyon\n"), reflect.TypeOf(Address{}), Address{City: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, Address{City: "Lyon"}, value)

	pointers := refusingFactory{ObjectFactory: descriptor.NewDefaultObjectFactory(nil), refused: reflect.TypeOf(&Address{})}
	serializer = newSerializer(t, func(s *serialization.Settings) { s.ObjectFactory = pointers })
	_, err = serializer.Deserialize(strings.NewReader("city: Lyon\n"), reflect.TypeOf(&Address{}), nil)
	require.ErrorAs(t, err, &creationErr)
	assert.Equal(t, reflect.TypeOf(&Address{}), creationErr.Type)
}

func TestPreferredIndent(t *testing.T) {
	serializer := newSerializer(t, func(s *serialization.Settings) { s.PreferredIndent = 4 })
	assertEqual(t, marshal(t, serializer, Person{Address: &Address{City: "c"}}), "address:\n    city: c\n")
}

func assertEqual(t *testing.T, actual, expected string) {
	t.Helper()
	if actual != expected {
		t.Fatalf("Not equal; diff expected...actual:\n%v\n", difflib.PPDiff(strings.Split(expected, "\n"), strings.Split(actual, "\n")))
	}
}

func TestSerializeAllScopesAnchorsToDocuments(t *testing.T) {
	serializer := newSerializer(t, nil)
	office := &Address{City: "Lyon"}

	var buf bytes.Buffer
	err := serializer.SerializeAll(&buf, []interface{}{
		Household{Home: office, Work: office},
		Household{Home: office, Work: &Address{City: "Nice"}},
	}, reflect.TypeOf(Household{}))
	require.NoError(t, err)

	assertEqual(t, buf.String(), "home: &o1\n  city: Lyon\nwork: *o1\n---\nhome:\n  city: Lyon\nwork:\n  city: Nice\n")

	reader := yamlevents.NewReader(yamlv3.NewParser(buf.Bytes(), ""))
	_, err = reader.Expect(yamlevents.StreamStart)
	require.NoError(t, err)

	var households []*Household
	for !reader.Accept(yamlevents.StreamEnd) {
		value, err := serializer.DeserializeFrom(reader, reflect.TypeOf(&Household{}), nil)
		require.NoError(t, err)
		households = append(households, value.(*Household))
	}

	require.Len(t, households, 2)
	assert.Same(t, households[0].Home, households[0].Work)
	assert.Equal(t, "Nice", households[1].Work.City)
}
