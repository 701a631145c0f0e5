package meitree

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<?xml-model href="mei-all.rng" type="application/xml"?>
<mei xmlns="http://www.music-encoding.org/ns/mei" xmlns:xlink="http://www.w3.org/1999/xlink" meiversion="4.0.0">
  <music>
    <body>
      <mdiv>
        <score>
          <section>
            <measure n="1" xml:id="m1">
              <staff n="1"><layer n="1"><note dur="4" xlink:title="a &amp; b"/></layer></staff>
            </measure>
          </section>
        </score>
      </mdiv>
    </body>
  </music>
</mei>`

func TestParse_ResolvesNamespaces(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.Root.Is(MEINamespace, "mei") {
		t.Fatalf("expected mei root, got %s {%s}", doc.Root.Local, doc.Root.Space)
	}
	m := doc.Root.FirstDescendant(MEINamespace, "measure")
	if m == nil {
		t.Fatal("expected a measure")
	}
	if m.ID() != "m1" {
		t.Errorf("expected xml:id %q, got %q", "m1", m.ID())
	}
	note := m.FirstDescendant(MEINamespace, "note")
	if got := note.AttrNS("http://www.w3.org/1999/xlink", "title"); got != "a & b" {
		t.Errorf("expected xlink:title %q, got %q", "a & b", got)
	}
	if len(doc.Prolog) != 1 || !strings.HasPrefix(doc.Prolog[0], "<?xml-model") {
		t.Errorf("expected xml-model prolog, got %v", doc.Prolog)
	}
}

func TestParse_PrefixedDocument(t *testing.T) {
	input := `<mei:mei xmlns:mei="http://www.music-encoding.org/ns/mei"><mei:music><mei:measure/></mei:music></mei:mei>`
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := doc.Root.FirstDescendant(MEINamespace, "measure")
	if m == nil {
		t.Fatal("expected measure in MEI namespace")
	}
	if m.Name() != "mei:measure" {
		t.Errorf("expected prefix to be preserved, got %q", m.Name())
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"mismatched":    "<a><b></a></b>",
		"unclosed":      "<a><b>",
		"trailing text": "<a/>text",
		"unbound":       "<x:a/>",
	}
	for name, input := range cases {
		_, err := Parse(strings.NewReader(input))
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestParse_Latin1Encoding(t *testing.T) {
	input := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><mei xmlns="http://www.music-encoding.org/ns/mei"><label>`), 0xE9)
	input = append(input, []byte(`</label></mei>`)...)
	doc, err := Parse(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Root.TextContent(); got != "é" {
		t.Errorf("expected %q, got %q", "é", got)
	}
}

func TestWriteTo_RoundTrip(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<?xml-model href="mei-all.rng" type="application/xml"?>`,
		`xmlns:xlink="http://www.w3.org/1999/xlink"`,
		`<measure n="1" xml:id="m1">`,
		`xlink:title="a &amp; b"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	again, err := Parse(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if got, want := len(again.Root.Descendants()), len(doc.Root.Descendants()); got != want {
		t.Errorf("expected %d descendants after round trip, got %d", want, got)
	}
}
