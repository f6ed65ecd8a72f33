package dom

import (
	"strings"
	"testing"
)

func TestParseAndRender(t *testing.T) {
	d, err := ParseString(`<!DOCTYPE html><html><head></head><body><div id="app"><p class="x">Hello <b>world</b></p></div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	app := d.GetElementByID("app")
	if app == nil {
		t.Fatal("app not found")
	}
	if got := app.TextContent(); got != "Hello world" {
		t.Errorf("TextContent = %q, want %q", got, "Hello world")
	}
	want := `<div id="app"><p class="x">Hello <b>world</b></p></div>`
	if got := OuterHTML(app); got != want {
		t.Errorf("OuterHTML = %q, want %q", got, want)
	}
}

func TestParseKeepsWhitespaceText(t *testing.T) {
	d, err := ParseString("<body><ul id=\"l\">\n  <li>a</li>\n</ul></body>")
	if err != nil {
		t.Fatal(err)
	}
	ul := d.GetElementByID("l")
	children := ul.Children()
	if len(children) != 3 {
		t.Fatalf("got %d children, want 3", len(children))
	}
	if !children[0].IsWhitespaceText() || !children[2].IsWhitespaceText() {
		t.Error("expected whitespace text around the list item")
	}
	if children[1].IsWhitespaceText() {
		t.Error("element reported as whitespace text")
	}
}

func TestSetInnerHTML(t *testing.T) {
	d := NewDocument()
	ul := d.CreateElement("ul")
	if err := ul.SetInnerHTML("<li>1</li><li>2</li>"); err != nil {
		t.Fatal(err)
	}
	if got := InnerHTML(ul); got != "<li>1</li><li>2</li>" {
		t.Errorf("InnerHTML = %q", got)
	}
	for _, c := range ul.Children() {
		if c.OwnerDocument() != d {
			t.Error("fragment node owned by another document")
		}
	}
}

func TestRenderSVGNamespace(t *testing.T) {
	d := NewDocument()
	svg := d.CreateElementNS(NamespaceSVG, "svg")
	svg.AppendChild(d.CreateElementNS(NamespaceSVG, "circle"))
	got := OuterHTML(svg)
	if !strings.Contains(got, "<circle>") {
		t.Errorf("OuterHTML = %q, want circle child", got)
	}
}

func TestCloneNode(t *testing.T) {
	d := NewDocument()
	p := d.CreateElement("p")
	p.SetAttribute("title", "t")
	_ = p.AppendChild(d.CreateTextNode("x"))
	p.AddEventListener("click", func(Event) {})

	shallow := p.CloneNode(false)
	if shallow.FirstChild() != nil || shallow.ListenerCount("") != 0 {
		t.Error("shallow clone copied children or listeners")
	}
	deep := p.CloneNode(true)
	if OuterHTML(deep) != OuterHTML(p) {
		t.Errorf("deep clone = %q, want %q", OuterHTML(deep), OuterHTML(p))
	}
}
