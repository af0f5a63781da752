package htmltable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// ---- Parse() tests ----

func TestParse_ExtractsTopLevelTables_WithIndexAndAttrs(t *testing.T) {
	src := `
<!doctype html><html><body>
  <table id="t1" name="alpha">
    <tr><td>Name</td><td>Alice</td></tr>
    <tr><td>Age</td><td>30</td></tr>
  </table>

  <div>
    <table id="t2">
      <thead><tr><th>X</th><th>Y</th></tr></thead>
      <tbody><tr><td>p</td><td>q</td></tr></tbody>
    </table>
  </div>
</body></html>`

	tables, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}

	if tables[0].Index != 1 || tables[0].ID != "t1" || tables[0].Name != "alpha" {
		t.Fatalf("unexpected table[0] metadata: %+v", tables[0])
	}
	if tables[1].Index != 2 || tables[1].ID != "t2" || tables[1].Name != "" {
		t.Fatalf("unexpected table[1] metadata: %+v", tables[1])
	}

	assertJSON(t, tables[0].Value, `{"Name":"Alice","Age":"30"}`, "table[0].Value")
	assertJSON(t, tables[1].Value, `[{"X":"p","Y":"q"}]`, "table[1].Value")
}

func TestParse_NestedTablesBelongToTheirContainer(t *testing.T) {
	src := `
<html><body>
<table id="outer">
  <tr><td>X</td><td><table id="inner"><tr><td>P</td><td>Q</td></tr></table></td></tr>
</table>
</body></html>`

	tables, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 top-level table, got %d", len(tables))
	}
	if tables[0].ID != "outer" {
		t.Fatalf("expected outer table, got ID=%q", tables[0].ID)
	}
	assertJSON(t, tables[0].Value, `{"X":{"P":"Q"}}`, "Value")
}

func TestParse_KeepsDocumentOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 20; i++ {
		b.WriteString(`<table><tr><td>n</td><td>` + strings.Repeat("x", i+1) + `</td></tr></table>`)
	}
	b.WriteString("</body></html>")

	tables, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(tables) != 20 {
		t.Fatalf("expected 20 tables, got %d", len(tables))
	}
	for i, tab := range tables {
		if tab.Index != i+1 {
			t.Fatalf("table %d has Index %d", i, tab.Index)
		}
		v, _ := tab.Value.Map.Get("n")
		if v.Text != strings.Repeat("x", i+1) {
			t.Fatalf("table %d out of order: %q", i, v.Text)
		}
	}
}

func TestParse_NoTables(t *testing.T) {
	tables, err := Parse(strings.NewReader(`<html><body><p>nothing</p></body></html>`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(tables) != 0 {
		t.Fatalf("expected no tables, got %d", len(tables))
	}
}

func TestParse_ErrorFromReader(t *testing.T) {
	r := &errReader{err: errors.New("boom")}
	_, err := Parse(r)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestParseContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseContext(ctx, strings.NewReader(`<table><tr><td>a</td><td>b</td></tr></table>`))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractorParse_UsesMaxDepth(t *testing.T) {
	src := `<table><tr><td>a</td><td><table><tr><td>b</td><td>c</td></tr></table></td></tr></table>`

	ex := &Extractor{MaxDepth: 0}
	tables, err := ex.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	assertJSON(t, tables[0].Value, `{"a":{"b":"c"}}`, "default depth")

	ex = &Extractor{MaxDepth: -1}
	tables, err = ex.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	assertJSON(t, tables[0].Value, `{"a":{"b":"c"}}`, "negative depth means default")
}

type errReader struct{ err error }

func (e *errReader) Read(p []byte) (int, error) { return 0, e.err }

// ---- ParseSelector / Apply tests ----

func TestParseSelector_EmptyAndWhitespace(t *testing.T) {
	sel, err := ParseSelector("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sel.Indexes) != 0 || len(sel.Names) != 0 {
		t.Fatalf("expected empty selector, got %+v", sel)
	}
}

func TestParseSelector_MixedIndexesAndNames(t *testing.T) {
	sel, err := ParseSelector(" 1,foo,  2 ,bar,, ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sel.Indexes[1]; !ok {
		t.Fatalf("expected index 1 selected")
	}
	if _, ok := sel.Indexes[2]; !ok {
		t.Fatalf("expected index 2 selected")
	}
	if _, ok := sel.Names["foo"]; !ok {
		t.Fatalf("expected name foo selected")
	}
	if _, ok := sel.Names["bar"]; !ok {
		t.Fatalf("expected name bar selected")
	}
}

func TestParseSelector_InvalidIndex(t *testing.T) {
	for _, in := range []string{"0", "-1", " 0,foo"} {
		_, err := ParseSelector(in)
		if err == nil {
			t.Fatalf("expected error for %q, got nil", in)
		}
	}
}

func TestSelectorApply_SelectsByIndexOrIDOrName(t *testing.T) {
	tables := []Table{
		{Index: 1, ID: "t1", Name: "alpha"},
		{Index: 2, ID: "t2", Name: "beta"},
		{Index: 3, ID: "", Name: "gamma"},
		{Index: 4},
	}

	sel := Selector{
		Indexes: map[int]struct{}{2: {}},
		Names:   map[string]struct{}{"t1": {}, "gamma": {}},
	}
	got := sel.Apply(tables)

	if len(got) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(got))
	}
	if got[0].Index != 1 { // matched by ID t1
		t.Fatalf("expected first match Index=1, got %d", got[0].Index)
	}
	if got[1].Index != 2 { // matched by index 2
		t.Fatalf("expected second match Index=2, got %d", got[1].Index)
	}
	if got[2].Index != 3 { // matched by name gamma
		t.Fatalf("expected third match Index=3, got %d", got[2].Index)
	}
}

func TestSelectorApply_EmptySelectorReturnsInput(t *testing.T) {
	tables := []Table{{Index: 1}, {Index: 2}}
	sel := Selector{Indexes: map[int]struct{}{}, Names: map[string]struct{}{}}

	got := sel.Apply(tables)
	if len(got) != len(tables) {
		t.Fatalf("expected unchanged length, got %d", len(got))
	}
	for i := range tables {
		if got[i].Index != tables[i].Index {
			t.Fatalf("unexpected element at %d", i)
		}
	}
}

// ---- JSONEncoder tests ----

func TestJSONEncoder_Encode_SingleTableIsBareValue(t *testing.T) {
	m := NewMap()
	m.Set("k", Text("v"))
	tables := []Table{{Index: 1, Value: Keyed(m)}}

	var buf bytes.Buffer
	if err := NewJSONEncoder().Encode(&buf, tables); err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	want := "{\n  \"k\": \"v\"\n}\n"
	if buf.String() != want {
		t.Fatalf("unexpected JSON output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestJSONEncoder_Encode_CompactArray(t *testing.T) {
	m := NewMap()
	m.Set("k", Text("v"))
	tables := []Table{
		{Index: 1, Value: Text("a")},
		{Index: 2, Value: Keyed(m)},
	}

	var buf bytes.Buffer
	enc := NewJSONEncoder()
	enc.Indent = ""
	if err := enc.Encode(&buf, tables); err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	want := `["a",{"k":"v"}]` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected JSON output: %q want %q", buf.String(), want)
	}
}

func TestJSONEncoder_Encode_WithMeta(t *testing.T) {
	tables := []Table{
		{Index: 1, ID: "t1", Value: Rows([]*Map{mapOf("A", "1")})},
	}

	var buf bytes.Buffer
	enc := &JSONEncoder{WithMeta: true}
	if err := enc.Encode(&buf, tables); err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	want := `[{"index":1,"id":"t1","value":[{"A":"1"}]}]` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected JSON output: %q want %q", buf.String(), want)
	}
}

func TestJSONEncoder_Encode_NoTables(t *testing.T) {
	var buf bytes.Buffer
	enc := &JSONEncoder{}
	if err := enc.Encode(&buf, nil); err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if buf.String() != "[]\n" {
		t.Fatalf("unexpected JSON output: %q", buf.String())
	}
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestJSONEncoder_Encode_PropagatesWriterError(t *testing.T) {
	tables := []Table{{Index: 1, Value: Text("a")}}

	err := NewJSONEncoder().Encode(errWriter{}, tables)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// ---- test helpers ----

func assertJSON(t *testing.T, got Value, want, label string) {
	t.Helper()

	b, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("%s: marshal error: %v", label, err)
	}
	if string(b) != want {
		t.Fatalf("%s: mismatch\ngot=%s\nwant=%s", label, b, want)
	}
}

func mapOf(kv ...string) *Map {
	m := NewMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i], Text(kv[i+1]))
	}
	return m
}
