package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dhamidi/trail/query/parser"
	"github.com/dhamidi/trail/query/value"
)

func TestPrettyPrintQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"foo", "foo"},
		{".foo . bar", "foo.bar"},
		{"$.foo", "$.foo"},
		{"#..deps.filename", "#..deps.filename"},
		{"..(a.b)", "..(a.b)"},
		{"foo[a=1]", "foo[a = 1]"},
		{".[a]", ".[a]"},
		{"foo.[a]", "foo[a]"},
		{"foo.(a)", "foo.(a)"},
		{"(a)(b)", "(a).(b)"},
		{"foo.join( ', ' )", "foo.join(', ')"},
		{"size()", "size()"},
		{"{a:1,b,[c]:2,'d e':3}", "{a: 1, b, [c]: 2, 'd e': 3}"},
		{"[1,2 , 3]", "[1, 2, 3]"},
		{"no a", "not a"},
		{"-a", "-a"},
		{"a not in b", "a not in b"},
		{"a and(b or c)", "a and (b or c)"},
		{"1+2*3", "1 + 2 * 3"},
		{"x ~= 'y'", "x ~= 'y'"},
		{"// keep me\nfoo", "// keep me\nfoo"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := PrettyPrintQuery([]byte(tt.input))
			if err != nil {
				t.Fatalf("PrettyPrintQuery error: %v", err)
			}
			if string(got) != tt.want+"\n" {
				t.Errorf("got %q, want %q", got, tt.want+"\n")
			}
		})
	}
}

func TestPrettyPrintRoundTrip(t *testing.T) {
	queries := []string{
		"foo.bar.baz",
		".[a = 1 and b != 2]",
		"foo[x > 1].(y)",
		"a..b.c[d]",
		"..deps",
		"#..(deps + errors).size()",
		"(# + #..deps).filename",
		"{a, b: c.d, [e]: f, 'g': [1, 'two', true, null, undefined]}",
		"not -a * (b - -c) % 2",
		"a or b and c = d",
		"x in [1, 2] or y not in z",
		"$.foo.(#.bar)",
		"'a'.upper().split()",
		"1.5e3 / 2",
	}

	for _, query := range queries {
		t.Run(query, func(t *testing.T) {
			original, err := parser.Parse(query)
			if err != nil {
				t.Fatalf("parse original: %v", err)
			}
			printed, err := PrettyPrintQuery([]byte(query))
			if err != nil {
				t.Fatalf("pretty print: %v", err)
			}
			reparsed, err := parser.Parse(string(printed))
			if err != nil {
				t.Fatalf("parse printed %q: %v", printed, err)
			}
			if original.String() != reparsed.String() {
				t.Errorf("tree changed after printing %q\noriginal:\n%s\nreparsed:\n%s",
					printed, original, reparsed)
			}
			again, err := PrettyPrintQuery(printed)
			if err != nil {
				t.Fatalf("pretty print again: %v", err)
			}
			if !bytes.Equal(printed, again) {
				t.Errorf("printing is not idempotent: %q then %q", printed, again)
			}
		})
	}
}

func TestPrettyPrintRejectsInvalidQuery(t *testing.T) {
	if _, err := PrettyPrintQuery([]byte("foo +")); err == nil {
		t.Error("expected a syntax error")
	}
}

func TestResultEncoders(t *testing.T) {
	result := []any{value.ObjectOf("z", 1.0, "a", "x"), "plain", 2.5, nil}

	tests := []struct {
		format string
		want   string
	}{
		{"json", "[\n  {\n    \"z\": 1,\n    \"a\": \"x\"\n  },\n  \"plain\",\n  2.5,\n  null\n]\n"},
		{"line", "{\"z\":1,\"a\":\"x\"}\nplain\n2.5\nnull\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			enc, err := NewEncoder(tt.format, &out)
			if err != nil {
				t.Fatal(err)
			}
			if err := enc.Encode(result); err != nil {
				t.Fatal(err)
			}
			if out.String() != tt.want {
				t.Errorf("got\n%s\nwant\n%s", out.String(), tt.want)
			}
		})
	}
}

func TestYAMLEncoderKeepsOrder(t *testing.T) {
	var out bytes.Buffer
	if err := NewYAMLEncoder(&out).Encode(value.ObjectOf("z", "last", "a", "first")); err != nil {
		t.Fatal(err)
	}
	if out.String() != "z: last\na: first\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestUnknownEncoder(t *testing.T) {
	if _, err := NewEncoder("xml", &bytes.Buffer{}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestLineEncoderScalar(t *testing.T) {
	var out bytes.Buffer
	if err := NewLineEncoder(&out).Encode("one"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "one\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestTokenEncoder(t *testing.T) {
	tokens := parser.Tokenize("a.b // c")

	var out bytes.Buffer
	if err := NewTokenEncoder(&out, false).Encode(tokens); err != nil {
		t.Fatal(err)
	}
	want := "Identifier\t0-1\t1:1\t\"a\"\n" +
		".\t1-2\t1:2\t\".\"\n" +
		"Identifier\t2-3\t1:3\t\"b\"\n" +
		"EOF\t8-8\t1:9\t\"\"\n"
	if out.String() != want {
		t.Errorf("got\n%s\nwant\n%s", out.String(), want)
	}

	out.Reset()
	if err := NewTokenEncoder(&out, true).Encode(tokens); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "LineComment\t4-8\t1:5\t\"// c\"\n") {
		t.Errorf("trivia missing from\n%s", out.String())
	}
}

func TestASTJSONEncoder(t *testing.T) {
	p := parser.NewParser(parser.Tokenize("foo."), parser.WithRecovery())
	root, _ := p.Parse()

	var out bytes.Buffer
	err := NewASTJSONEncoder(&out).Encode(ParseResult{Root: root, Slots: p.Slots(), Err: p.Err()})
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Root struct {
			Kind  string   `json:"kind"`
			Flags []string `json:"flags"`
			Span  struct {
				End struct {
					Offset int `json:"offset"`
				} `json:"end"`
			} `json:"span"`
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"root"`
		Slots []struct {
			Kind string `json:"kind"`
			From int    `json:"from"`
		} `json:"slots"`
		Error struct {
			Message  string   `json:"message"`
			Expected []string `json:"expected"`
			Position struct {
				Column int `json:"column"`
			} `json:"position"`
		} `json:"error"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}

	if decoded.Root.Kind != "Property" || len(decoded.Root.Flags) != 1 || decoded.Root.Flags[0] != "missing" {
		t.Errorf("root = %+v", decoded.Root)
	}
	if decoded.Root.Span.End.Offset != 4 {
		t.Errorf("root ends at %d, want 4", decoded.Root.Span.End.Offset)
	}
	if len(decoded.Root.Children) != 1 || decoded.Root.Children[0].Name != "foo" {
		t.Errorf("children = %+v", decoded.Root.Children)
	}
	if len(decoded.Slots) != 2 || decoded.Slots[1].From != 4 {
		t.Errorf("slots = %+v", decoded.Slots)
	}
	if len(decoded.Error.Expected) != 1 || decoded.Error.Expected[0] != "Identifier" || decoded.Error.Position.Column != 5 {
		t.Errorf("error = %+v", decoded.Error)
	}
}
