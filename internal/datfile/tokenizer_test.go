package datfile

import (
	"reflect"
	"testing"
)

func TestSplitDelimited(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a.rom,400,deadbeef,Set1", []string{"a.rom", "400", "deadbeef", "Set1"}},
		{"escaped comma", `foo\,bar.rom,00000010,DEADBEEF,Set1`, []string{"foo,bar.rom", "00000010", "DEADBEEF", "Set1"}},
		{"double quoted comma", `"a,b.rom",10,ff,S`, []string{"a,b.rom", "10", "ff", "S"}},
		{"single quoted comma", `'a,b.rom',10,ff,S`, []string{"a,b.rom", "10", "ff", "S"}},
		{"backslash quoted comma", `\a,b.rom\,10,ff,S`, []string{"a,b.rom", "10", "ff", "S"}},
		{"lone backslash set", `a.rom,10,ff,\`, []string{"a.rom", "10", "ff", `\`}},
		{"lone backslash then comment", `a.rom,10,ff,\,note`, []string{"a.rom", "10", "ff", `\`, "note"}},
		{"comment", "a.rom,10,ff,S,good dump", []string{"a.rom", "10", "ff", "S", "good dump"}},
		{"extra fields dropped", "a,1,2,S,c,extra,more", []string{"a", "1", "2", "S", "c"}},
		{"empty field kept", "a,,2,S", []string{"a", "", "2", "S"}},
		{"trailing empty comment", "a,1,2,S,", []string{"a", "1", "2", "S", ""}},
		{"crlf", "a,1,2,S\r\n", []string{"a", "1", "2", "S"}},
		{"backslash not before comma", `dir\file.rom,1,2,S`, []string{`dir\file.rom`, "1", "2", "S"}},
		{"trailing backslash at eol", `a,1,2,S\`, []string{"a", "1", "2", `S\`}},
		{"single quote char field", `",1,2,S`, []string{`"`, "1", "2", "S"}},
		{"quote inside unquoted", `it's.rom,1,2,S`, []string{"it's.rom", "1", "2", "S"}},
		{"blank", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitDelimited(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("splitDelimited(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseDelimitedLine(t *testing.T) {
	rec, err := parseDelimitedLine(`foo\,bar.rom,00000010,DEADBEEF,Set1`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.name != "foo,bar.rom" || rec.size != 16 || rec.crc != 0xdeadbeef || rec.set != "Set1" || rec.comment != "" {
		t.Fatalf("unexpected record %+v", rec)
	}

	rec, err = parseDelimitedLine(`a.rom,0x400,FFFFFFFF,\`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.set != "/" || rec.size != 1024 || rec.crc != 0xffffffff {
		t.Fatalf("unexpected record %+v", rec)
	}

	if rec, err := parseDelimitedLine("   "); err == nil && rec != nil {
		t.Fatalf("whitespace-only line should not produce a valid record: %+v", rec)
	}
	if rec, err := parseDelimitedLine(""); rec != nil || err != nil {
		t.Fatalf("blank line should be skipped silently, got %+v %v", rec, err)
	}

	bad := []string{
		"a.rom,10,ff",
		"a.rom,zz,ff,S",
		"a.rom,10,123456789,S",
		",10,ff,S",
		"a.rom,,ff,S",
	}
	for _, line := range bad {
		if _, err := parseDelimitedLine(line); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
}

func TestLexLine(t *testing.T) {
	toks := lexLine(`	rom ( name "Super Game (USA).sfc" size 524288 crc 1a2b3c4d )`)
	want := []token{
		{text: "rom"}, {text: "("},
		{text: "name"}, {text: "Super Game (USA).sfc", quoted: true},
		{text: "size"}, {text: "524288"},
		{text: "crc"}, {text: "1a2b3c4d"},
		{text: ")"},
	}
	if !reflect.DeepEqual(toks, want) {
		t.Fatalf("lexLine = %+v", toks)
	}
	if got := lexLine(`name "unterminated`); len(got) != 2 || got[1].text != "unterminated" {
		t.Fatalf("unterminated quote should run to end of line: %+v", got)
	}
}

func TestParseDialect(t *testing.T) {
	for input, want := range map[string]Dialect{"csv": DialectDelimited, "Delimited": DialectDelimited, "cmpro": DialectBlock, "block": DialectBlock} {
		got, err := ParseDialect(input)
		if err != nil || got != want {
			t.Fatalf("ParseDialect(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseDialect("xml"); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestCollectionName(t *testing.T) {
	cases := map[string]string{
		"/dats/Nintendo - Game Boy (20240101).dat": "Nintendo - Game Boy (20240101)",
		"SetA.csv":     "SetA",
		"noext":        "noext",
		"/a/b.tar.dat": "b.tar",
	}
	for in, want := range cases {
		if got := CollectionName(in); got != want {
			t.Fatalf("CollectionName(%q) = %q, want %q", in, got, want)
		}
	}
}
