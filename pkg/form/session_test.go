package form

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-widgetlist/pkg/widget"
)

func testSchemas(t *testing.T) *widget.ClassSchemas {
	t.Helper()
	schemas := widget.NewClassSchemas()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("add schema: %v", err)
		}
	}
	must(schemas.Add("Text", []widget.FieldDescriptor{
		{Key: "title", Label: "Title", Input: widget.TextKind{}},
		{Key: "body", Label: "Body", Input: widget.TextareaKind{}},
	}))
	must(schemas.Add("Picker", []widget.FieldDescriptor{
		{Key: "title", Label: "Title", Input: widget.TextKind{}},
		{Key: "color", Label: "Color", Input: widget.SelectKind{Choices: widget.Choices{
			{Key: "r", Label: "Red"}, {Key: "g", Label: "Green"}, {Key: "b", Label: "Blue"},
		}}},
		{Key: "tags", Label: "Tags", Input: widget.SelectKind{Multi: true, Choices: widget.Choices{
			{Key: "1", Label: "one"}, {Key: "2", Label: "two"}, {Key: "3", Label: "three"},
		}}},
	}))
	return schemas
}

func captureSubmit(t *testing.T, s *Session) (string, Payload) {
	t.Helper()
	var (
		gotClass   string
		gotPayload Payload
		calls      int
	)
	err := s.Submit(func(class string, payload Payload) error {
		calls++
		gotClass = class
		gotPayload = payload
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one submit call, got %d", calls)
	}
	return gotClass, gotPayload
}

func TestCreateSessionWithSeveralClassesOffersSelector(t *testing.T) {
	s := NewCreate(testSchemas(t))

	if !s.HasClassSelector() {
		t.Fatalf("expected class selector")
	}
	if diff := cmp.Diff([]string{"Text", "Picker"}, s.Classes()); diff != "" {
		t.Fatalf("classes mismatch (-want +got):\n%s", diff)
	}
	if s.Class() != "" {
		t.Fatalf("expected no class chosen, got %q", s.Class())
	}
	if len(s.Inputs()) != 0 {
		t.Fatalf("expected no inputs before a class is chosen")
	}
	if err := s.Submit(func(string, Payload) error { return nil }); !errors.Is(err, ErrNoClass) {
		t.Fatalf("expected ErrNoClass, got %v", err)
	}
}

func TestCreateSessionSingleClassIsChosen(t *testing.T) {
	only, _ := testSchemas(t).Only("Text")
	s := NewCreate(only)

	if s.HasClassSelector() {
		t.Fatalf("did not expect class selector for one class")
	}
	if s.Class() != "Text" {
		t.Fatalf("expected Text, got %q", s.Class())
	}
}

func TestSelectClassResetsValues(t *testing.T) {
	s := NewCreate(testSchemas(t))
	if err := s.SelectClass("Text"); err != nil {
		t.Fatalf("select class: %v", err)
	}
	if err := s.SetText("body", "hello"); err != nil {
		t.Fatalf("set text: %v", err)
	}
	if err := s.SelectClass("Picker"); err != nil {
		t.Fatalf("select class: %v", err)
	}
	if len(s.Data()) != 0 {
		t.Fatalf("expected values reset, got %#v", s.Data())
	}

	var kinds []string
	for _, in := range s.Inputs() {
		kinds = append(kinds, in.Kind())
	}
	if diff := cmp.Diff([]string{"text", "select", "select"}, kinds); diff != "" {
		t.Fatalf("input kinds mismatch (-want +got):\n%s", diff)
	}

	if err := s.SelectClass("Missing"); !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("expected ErrUnknownClass, got %v", err)
	}
}

func TestTextRoundTripSplitsTitle(t *testing.T) {
	s := NewCreate(testSchemas(t))
	_ = s.SelectClass("Text")

	for _, in := range s.Inputs() {
		switch field := in.(type) {
		case *TextField:
			if err := field.Set("  My title "); err != nil {
				t.Fatalf("set: %v", err)
			}
		case *TextareaField:
			if err := field.Set("line one\nline two"); err != nil {
				t.Fatalf("set: %v", err)
			}
		default:
			t.Fatalf("unexpected input %T", in)
		}
	}

	class, payload := captureSubmit(t, s)
	if class != "Text" {
		t.Fatalf("expected Text, got %q", class)
	}
	want := Payload{Title: "  My title ", Configuration: map[string]any{"body": "line one\nline two"}}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSingleSelectSubmitsScalar(t *testing.T) {
	s := NewCreate(testSchemas(t))
	_ = s.SelectClass("Picker")

	in, ok := s.Input("color")
	if !ok {
		t.Fatalf("expected color input")
	}
	sel := in.(*SelectField)
	if sel.Multi() {
		t.Fatalf("expected single select")
	}
	wantOptions := []Option{
		{Key: "r", Label: "Red", Value: "r"},
		{Key: "g", Label: "Green", Value: "g"},
		{Key: "b", Label: "Blue", Value: "b"},
	}
	if diff := cmp.Diff(wantOptions, sel.Options()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if err := sel.Select("g"); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, payload := captureSubmit(t, s)
	if got := payload.Configuration["color"]; got != "g" {
		t.Fatalf("expected scalar g, got %#v", got)
	}

	if err := sel.Select("r", "g"); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind for two values, got %v", err)
	}
	if err := sel.Select("x"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

func TestMultiSelectSubmitsSelectionOrder(t *testing.T) {
	s := NewCreate(testSchemas(t))
	_ = s.SelectClass("Picker")

	if err := s.Select("tags", "3", "1"); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, payload := captureSubmit(t, s)
	if diff := cmp.Diff([]any{"3", "1"}, payload.Configuration["tags"]); diff != "" {
		t.Fatalf("multi value mismatch (-want +got):\n%s", diff)
	}
}

func TestEditSessionPrepopulatesAndFixesClass(t *testing.T) {
	data := map[string]any{
		"title": "Existing",
		"color": "b",
		"tags":  []any{float64(2), "9", "3"},
	}
	s, err := NewEdit(testSchemas(t), "Picker", data)
	if err != nil {
		t.Fatalf("new edit: %v", err)
	}

	if s.HasClassSelector() {
		t.Fatalf("edit sessions never offer a selector")
	}
	if diff := cmp.Diff([]string{"Picker"}, s.Classes()); diff != "" {
		t.Fatalf("classes mismatch (-want +got):\n%s", diff)
	}
	if err := s.SelectClass("Text"); !errors.Is(err, ErrClassFixed) {
		t.Fatalf("expected ErrClassFixed, got %v", err)
	}

	color, _ := s.Input("color")
	if diff := cmp.Diff([]Option{{Key: "b", Label: "Blue", Value: "b"}}, color.(*SelectField).Selected()); diff != "" {
		t.Fatalf("single default mismatch (-want +got):\n%s", diff)
	}
	tags, _ := s.Input("tags")
	wantTags := []Option{{Key: "2", Label: "two", Value: "2"}, {Key: "3", Label: "three", Value: "3"}}
	if diff := cmp.Diff(wantTags, tags.(*SelectField).Selected()); diff != "" {
		t.Fatalf("multi default mismatch (-want +got):\n%s", diff)
	}

	title, _ := s.Input("title")
	if got := title.(*TextField).Value(); got != "Existing" {
		t.Fatalf("expected pre-populated title, got %q", got)
	}

	data["title"] = "mutated"
	if got := title.(*TextField).Value(); got != "Existing" {
		t.Fatalf("session must not alias caller data, got %q", got)
	}
}

func TestEditSessionUnknownClass(t *testing.T) {
	if _, err := NewEdit(testSchemas(t), "Nope", nil); !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("expected ErrUnknownClass, got %v", err)
	}
}

func TestFromEditable(t *testing.T) {
	only, _ := testSchemas(t).Only("Text")
	s, err := FromEditable(widget.Editable{Classes: only, Data: map[string]any{"title": "t", "body": "b"}})
	if err != nil {
		t.Fatalf("from editable: %v", err)
	}
	class, payload := captureSubmit(t, s)
	if class != "Text" || payload.Title != "t" || payload.Configuration["body"] != "b" {
		t.Fatalf("unexpected submission %q %#v", class, payload)
	}
}

func TestSetterErrors(t *testing.T) {
	s := NewCreate(testSchemas(t))
	_ = s.SelectClass("Picker")

	if err := s.SetText("missing", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := s.SetText("color", "x"); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
	if err := s.Select("title", "x"); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
}

func TestValidateAndStrictSubmit(t *testing.T) {
	data := map[string]any{"title": "t", "body": "b", "legacy": 1}

	lenient, _ := NewEdit(testSchemas(t), "Text", data)
	if err := lenient.Validate(); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	_, payload := captureSubmit(t, lenient)
	if _, ok := payload.Configuration["legacy"]; !ok {
		t.Fatalf("lenient submit forwards unknown keys")
	}

	strict, _ := NewEdit(testSchemas(t), "Text", data, WithStrictKeys())
	err := strict.Submit(func(string, Payload) error {
		t.Fatalf("strict submit must not call back")
		return nil
	})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestCloseDiscardsEdits(t *testing.T) {
	s := NewCreate(testSchemas(t))
	_ = s.SelectClass("Text")
	_ = s.SetText("body", "draft")
	s.Close()

	if !s.Closed() {
		t.Fatalf("expected closed")
	}
	if len(s.Data()) != 0 {
		t.Fatalf("expected edits discarded")
	}
	if err := s.SetText("body", "again"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.Submit(func(string, Payload) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on submit, got %v", err)
	}
}

func TestSubmitPropagatesCallbackError(t *testing.T) {
	s := NewCreate(testSchemas(t))
	_ = s.SelectClass("Text")
	boom := errors.New("boom")
	if err := s.Submit(func(string, Payload) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if s.Closed() {
		t.Fatalf("failed submit leaves the session open")
	}
}
