package template

import (
	"errors"
	"reflect"
	"testing"

	"summonmind/atlas/pkg/schema"
)

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		templates map[string]string
		record    schema.Record
		want      map[string]string
	}{
		{
			name:      "simple substitution",
			templates: map[string]string{"fullName": "{{firstName}} {{lastName}}"},
			record:    schema.Record{"firstName": "Alice", "lastName": "Wonder"},
			want:      map[string]string{"fullName": "Alice Wonder"},
		},
		{
			name:      "no templates",
			templates: nil,
			record:    schema.Record{"x": "y"},
			want:      map[string]string{},
		},
		{
			name:      "missing reference becomes empty string",
			templates: map[string]string{"greeting": "Hello {{nobody}}!"},
			record:    schema.Record{},
			want:      map[string]string{"greeting": "Hello !"},
		},
		{
			name:      "numeric value stringified",
			templates: map[string]string{"label": "age={{age}}"},
			record:    schema.Record{"age": 25.0},
			want:      map[string]string{"label": "age=25"},
		},
		{
			name:      "boolean value stringified",
			templates: map[string]string{"label": "active={{active}}"},
			record:    schema.Record{"active": true},
			want:      map[string]string{"label": "active=true"},
		},
		{
			name: "computed referencing computed",
			templates: map[string]string{
				"greeting": "Hello {{fullName}}",
				"fullName": "{{firstName}} {{lastName}}",
			},
			record: schema.Record{"firstName": "Alice", "lastName": "Wonder"},
			want: map[string]string{
				"fullName": "Alice Wonder",
				"greeting": "Hello Alice Wonder",
			},
		},
		{
			name: "data field wins over computed with same name",
			templates: map[string]string{
				"label": "{{title}}",
				"title": "computed title",
			},
			record: schema.Record{"title": "data title"},
			want: map[string]string{
				"label": "data title",
				"title": "data title",
			},
		},
		{
			name: "whitespace inside braces",
			templates: map[string]string{
				"label": "{{ firstName }}",
			},
			record: schema.Record{"firstName": "Alice"},
			want:   map[string]string{"label": "Alice"},
		},
		{
			name: "five hop chain resolves",
			templates: map[string]string{
				"a": "a:{{b}}",
				"b": "b:{{c}}",
				"c": "c:{{d}}",
				"d": "d:{{e}}",
				"e": "e:{{f}}",
				"f": "end",
			},
			record: schema.Record{},
			want: map[string]string{
				"a": "a:b:c:d:e:end",
				"b": "b:c:d:e:end",
				"c": "c:d:e:end",
				"d": "d:e:end",
				"e": "e:end",
				"f": "end",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			got, err := r.Resolve(tt.templates, tt.record)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolver_DepthExceeded(t *testing.T) {
	tests := []struct {
		name      string
		templates map[string]string
	}{
		{
			name: "six hop chain",
			templates: map[string]string{
				"a": "{{b}}",
				"b": "{{c}}",
				"c": "{{d}}",
				"d": "{{e}}",
				"e": "{{f}}",
				"f": "{{g}}",
				"g": "end",
			},
		},
		{
			name: "direct cycle",
			templates: map[string]string{
				"a": "{{b}}",
				"b": "{{a}}",
			},
		},
		{
			name: "self reference",
			templates: map[string]string{
				"a": "{{a}}",
			},
		},
		{
			name: "transitive cycle",
			templates: map[string]string{
				"a": "{{b}}",
				"b": "{{c}}",
				"c": "{{a}}",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			got, err := r.Resolve(tt.templates, schema.Record{})
			if err == nil {
				t.Fatalf("Resolve() succeeded with %v, want depth error", got)
			}

			var depthErr *DepthExceededError
			if !errors.As(err, &depthErr) {
				t.Errorf("Resolve() error = %T (%v), want *DepthExceededError", err, err)
			}
			if err.Error() != "Max evaluation depth reached" {
				t.Errorf("error message = %q, want %q", err.Error(), "Max evaluation depth reached")
			}
			if got != nil {
				t.Errorf("Resolve() returned partial map %v on failure", got)
			}
		})
	}
}

func TestResolver_DeterministicOrder(t *testing.T) {
	templates := map[string]string{
		"z": "{{m}}-z",
		"m": "{{a}}-m",
		"a": "base",
	}

	r := NewResolver()
	first, err := r.Resolve(templates, schema.Record{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	for i := 0; i < 20; i++ {
		got, err := r.Resolve(templates, schema.Record{})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("Resolve() nondeterministic: %v vs %v", got, first)
		}
	}

	want := map[string]string{"a": "base", "m": "base-m", "z": "base-m-z"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("Resolve() = %v, want %v", first, want)
	}
}
